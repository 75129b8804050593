package service

import (
	"context"
	"io"
)

// FilePort は Slack 上のファイル取得のポートです
type FilePort interface {
	// Download は認証付きURLからファイルを取得し w に書き込みます
	// 200 以外の応答は domain.ErrFetch をラップしたエラーを返します
	Download(ctx context.Context, url string, w io.Writer) error
}

// ArchivePort はアーカイブ展開のポートです
type ArchivePort interface {
	// Extract は archivePath のアーカイブを destDir 配下に展開します
	// 展開できない場合は domain.ErrExtract をラップしたエラーを返し、destDir を残しません
	Extract(archivePath, destDir string) error
}

// ObjectStorePort はオブジェクトストレージへのアップロードのポートです
type ObjectStorePort interface {
	// Put は localPath のファイルを key に上書きアップロードします
	Put(ctx context.Context, key, localPath string) error
}

// RepositoryPort はバージョン管理リポジトリへのファイル同期のポートです
type RepositoryPort interface {
	// Upsert は filePath が存在しなければ作成し、存在すれば直前のリビジョンを指定して更新します
	Upsert(ctx context.Context, filePath string, content []byte, message string) error
}
