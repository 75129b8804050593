package domain

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ルーティング先ディレクトリのプレフィックス
const eventsPrefix = "events"

// 取り込みステータス
const (
	StatusCompleted     = "completed"
	StatusPartial       = "partial"
	StatusFetchFailed   = "fetch_failed"
	StatusExtractFailed = "extract_failed"
)

// メッセージに添付されたファイル参照
type Attachment struct {
	// ID はSlackのファイルID
	ID string

	// Name はアップロード時のファイル名
	Name string

	// Title はSlack上のファイルタイトル（未設定の場合あり）
	Title string

	// Mimetype はSlackが判定したMIMEタイプ
	Mimetype string

	// URLPrivate は認証付きダウンロードURL
	URLPrivate string
}

// zip として扱うMIMEタイプ
var zipMimetypes = map[string]bool{
	"application/zip":              true,
	"application/x-zip-compressed": true,
	"application/x-zip":            true,
}

// IsZipArchive は添付ファイルがZIPアーカイブかどうかを判定します
// MIMEタイプまたは拡張子（大文字小文字を区別しない）で判定します
func (a Attachment) IsZipArchive() bool {
	if zipMimetypes[strings.ToLower(a.Mimetype)] {
		return true
	}
	return strings.EqualFold(filepath.Ext(a.Name), ".zip")
}

// Classification は展開済みファイルの振り分け種別です
type Classification int

const (
	// ClassGeneric はオブジェクトストレージへアップロードするファイル
	ClassGeneric Classification = iota
	// ClassMarkdown はリポジトリへ同期するMarkdownファイル
	ClassMarkdown
)

func (c Classification) String() string {
	if c == ClassMarkdown {
		return "markdown"
	}
	return "generic"
}

// 展開ツリー内の1ファイル
type RoutedFile struct {
	// LocalPath はローカルファイルシステム上の絶対パス
	LocalPath string

	// RelativePath は展開ディレクトリからの相対パス（"/" 区切り）
	RelativePath string

	// Classification は振り分け種別
	Classification Classification
}

// Classify はファイル名の拡張子から振り分け種別を決定します
// ".md" の判定は大文字小文字を区別します（".MD" は generic 扱い）
func Classify(name string) Classification {
	if strings.HasSuffix(name, ".md") {
		return ClassMarkdown
	}
	return ClassGeneric
}

// NewRoutedFile は展開ツリー内のファイルから RoutedFile を生成します
func NewRoutedFile(localPath, relativePath string) RoutedFile {
	rel := filepath.ToSlash(relativePath)
	return RoutedFile{
		LocalPath:      localPath,
		RelativePath:   rel,
		Classification: Classify(path.Base(rel)),
	}
}

// ObjectKey はオブジェクトストレージのキーを生成します
// 形式: "events/{date}/{slug}/{relative_path}"
func ObjectKey(date, slug, relativePath string) string {
	return path.Join(eventsPrefix, date, slug, filepath.ToSlash(relativePath))
}

// RepositoryPath はリポジトリ上のファイルパスを生成します
// 形式: "events/{basename}"（サブディレクトリは保持しません）
func RepositoryPath(relativePath string) string {
	return path.Join(eventsPrefix, path.Base(filepath.ToSlash(relativePath)))
}

// 添付ファイル1件分の取り込み結果
type IngestionRecord struct {
	// EventID はSlackイベントのID（空の場合は配信ごとに採番）
	EventID string

	// FileID はSlackのファイルID
	FileID string

	// FileName は添付ファイル名
	FileName string

	// Title はスラッグ生成に使ったタイトル
	Title string

	// Slug と Date はオブジェクトキーの分割に使った値
	Slug string
	Date string

	// ObjectKeys はアップロードに成功したオブジェクトキー
	ObjectKeys []string

	// RepositoryPaths は同期に成功したリポジトリ上のパス
	RepositoryPaths []string

	// Failures はシンクへの書き込みに失敗したファイル数
	Failures int

	// Status は取り込みステータス（StatusCompleted など）
	Status string

	// ProcessedAt は処理完了日時（Unix秒）
	ProcessedAt int64
}

// IngestionKey は取り込み結果の一意キーを生成します
func IngestionKey(eventID, fileID string) string {
	return fmt.Sprintf("%s:%s", eventID, fileID)
}

// Validate はIngestionRecordの必須項目を検証します
func (r IngestionRecord) Validate() error {
	if strings.TrimSpace(r.EventID) == "" {
		return fmt.Errorf("%w: EventIDは必須項目です", ErrInvalid)
	}
	if strings.TrimSpace(r.FileID) == "" {
		return fmt.Errorf("%w: FileIDは必須項目です", ErrInvalid)
	}
	if strings.Contains(r.EventID, "/") || strings.Contains(r.FileID, "/") {
		return fmt.Errorf("%w: EventID/FileIDに \"/\" は使用できません", ErrInvalid)
	}
	switch r.Status {
	case StatusCompleted, StatusPartial, StatusFetchFailed, StatusExtractFailed:
	default:
		return fmt.Errorf("%w: 不明なStatusです (%q)", ErrInvalid, r.Status)
	}
	if r.ProcessedAt <= 0 {
		return fmt.Errorf("%w: ProcessedAtは0より大きい必要があります", ErrInvalid)
	}
	return nil
}
