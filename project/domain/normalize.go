package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // ホストのタイムゾーンDBに依存しない
	"unicode"

	"golang.org/x/text/width"
)

// DefaultTimezone は日付パーティションに使うタイムゾーン（JST）です
const DefaultTimezone = "Asia/Tokyo"

// DefaultTitle はタイトルが空の場合に使う値です
const DefaultTitle = "untitled"

// スラッグの最大長（ルーン数）
const maxSlugRunes = 80

// 日付フォーマット YYYY-MM-DD
const dateLayout = "2006-01-02"

// jst はタイムゾーンDBが使えない場合の固定オフセット
var jst = time.FixedZone("JST", 9*60*60)

// LoadLocation はタイムゾーン名から *time.Location を取得します
// 空文字は Asia/Tokyo として扱います
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultTimezone {
			return jst, nil
		}
		return nil, fmt.Errorf("%w: タイムゾーン読み込み失敗 (name=%s): %v", ErrInvalid, name, err)
	}
	return loc, nil
}

// FormatDate は t を loc の暦日として "YYYY-MM-DD" に整形します
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = jst
	}
	return t.In(loc).Format(dateLayout)
}

// TodayIn は loc における今日の日付を返します
// プロセスのローカルタイムゾーンには依存しません
func TodayIn(loc *time.Location) string {
	return FormatDate(time.Now(), loc)
}

// Slugify はタイトル文字列からパスに使えるスラッグを生成します
//
// 全角・半角形を正規化（全角スペースは半角スペース）したうえで、
// ASCII英数字・"_"・非ASCIIの文字（ひらがな・カタカナ・漢字、アクセント付きラテン文字、ハングル等）と数字のみを残し、
// 空白とハイフンの連続は1つの "-" にまとめます。大文字小文字は保持します。
// 結果が空の場合は "untitled" を返します。
func Slugify(text string) string {
	text = strings.ReplaceAll(text, "　", " ")
	text = width.Fold.String(text)

	var b strings.Builder
	pendingSep := false
	for _, r := range text {
		switch {
		case isSlugRune(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingSep = true
		}
	}

	slug := truncateRunes(b.String(), maxSlugRunes)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return DefaultTitle
	}
	return slug
}

// TitleFor はスラッグ生成に使うタイトルを決定します
// メッセージ本文が空白のみの場合は添付ファイルのタイトル、ファイル名（拡張子なし）の順に使います
func TitleFor(text string, a Attachment) string {
	if strings.TrimSpace(text) != "" {
		return text
	}
	if strings.TrimSpace(a.Title) != "" && a.Title != a.Name {
		return a.Title
	}
	if base := strings.TrimSuffix(a.Name, filepath.Ext(a.Name)); strings.TrimSpace(base) != "" {
		return base
	}
	return DefaultTitle
}

func isSlugRune(r rune) bool {
	if r < unicode.MaxASCII {
		return r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
	}
	// 長音符 "ー" (Lm) や結合文字も含め、記号・絵文字・空白以外は残す
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
