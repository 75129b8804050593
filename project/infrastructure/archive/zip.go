package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"slack-archive-sync/project/domain"
)

// DefaultMaxBytes は展開後の合計サイズの上限（1 GiB）です
const DefaultMaxBytes int64 = 1 << 30

// errTooLarge は展開後サイズが上限を超えた場合のエラー
var errTooLarge = errors.New("展開後のサイズが上限を超えています")

// Extractor は service.ArchivePort の ZIP 実装です
type Extractor struct {
	maxBytes int64
}

// NewExtractor は ZIP 展開器を作成します
// maxBytes が 0 以下の場合は DefaultMaxBytes を使います
func NewExtractor(maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Extractor{maxBytes: maxBytes}
}

// Extract は archivePath の ZIP を destDir 配下に展開します
// アーカイブ内の相対パス構造はそのまま保持します。
// 失敗した場合は途中まで展開したファイルを残さず destDir ごと削除します。
func (e *Extractor) Extract(archivePath, destDir string) (err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: zip 読み込み失敗 (path=%s): %v", domain.ErrExtract, filepath.Base(archivePath), err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("archive: 展開ディレクトリ作成失敗: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(destDir)
		}
	}()

	remaining := e.maxBytes
	for _, f := range r.File {
		name, skip, err := entryName(f.Name)
		if err != nil {
			return err
		}
		if skip {
			continue
		}

		target := filepath.Join(destDir, filepath.FromSlash(name))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("archive: ディレクトリ作成失敗 (entry=%s): %w", name, err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			// シンボリックリンク等は展開しない
			continue
		}

		n, err := extractFile(f, target, remaining)
		if err != nil {
			if errors.Is(err, errTooLarge) {
				return fmt.Errorf("%w: %v (limit=%d)", domain.ErrExtract, err, e.maxBytes)
			}
			return fmt.Errorf("%w: エントリ展開失敗 (entry=%s): %v", domain.ErrExtract, name, err)
		}
		remaining -= n
	}

	return nil
}

// entryName はエントリ名を検証し、展開先の相対パスを返します
// ディレクトリ外を指すエントリはエラー、macOS のメタデータはスキップします
func entryName(raw string) (name string, skip bool, err error) {
	raw = strings.ReplaceAll(raw, `\`, "/")
	if strings.HasPrefix(raw, "/") {
		return "", false, fmt.Errorf("%w: 絶対パスのエントリ (entry=%s)", domain.ErrExtract, raw)
	}

	name = path.Clean(raw)
	if name == "." {
		return "", true, nil
	}
	if name == ".." || strings.HasPrefix(name, "../") {
		return "", false, fmt.Errorf("%w: 展開先外を指すエントリ (entry=%s)", domain.ErrExtract, raw)
	}

	if name == "__MACOSX" || strings.HasPrefix(name, "__MACOSX/") || path.Base(name) == ".DS_Store" {
		return "", true, nil
	}
	return name, false, nil
}

// extractFile は1エントリを target に書き出し、書き込んだバイト数を返します
func extractFile(f *zip.File, target string, limit int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}

	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	// 上限+1 バイトまで読み、超えたかどうかを判定する
	n, err := io.Copy(out, io.LimitReader(rc, limit+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	if n > limit {
		return n, errTooLarge
	}
	return n, nil
}
