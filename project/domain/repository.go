package domain

import (
	"context"
)

// IngestionRepository は添付ファイル取り込み結果の永続化を担当します
type IngestionRepository interface {
	// Save は取り込み結果を保存します
	// 同一キー(event:file)の既存レコードがある場合は上書きします（再送時も冪等）
	// バリデーションエラー時は domain.ErrInvalid を返します
	Save(ctx context.Context, r *IngestionRecord) error
}
