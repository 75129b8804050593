package domain

import "errors"

// ドメインエラー定義
var (
	// ErrInvalid は不正な値が設定された場合のエラー
	ErrInvalid = errors.New("ドメイン: 不正な値です")

	// ErrNotFound は要求されたリソースが見つからない場合のエラー
	ErrNotFound = errors.New("ドメイン: リソースが見つかりません")

	// ErrNotConfigured は必要な設定（トークン・バケット名など）が未設定の場合のエラー
	ErrNotConfigured = errors.New("ドメイン: 設定が不足しています")

	// ErrFetch は添付ファイルのダウンロードに失敗した場合のエラー
	ErrFetch = errors.New("ドメイン: ファイル取得に失敗しました")

	// ErrExtract はアーカイブの展開に失敗した場合のエラー
	ErrExtract = errors.New("ドメイン: アーカイブ展開に失敗しました")
)
