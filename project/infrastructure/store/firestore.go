package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"slack-archive-sync/project/domain"
	"slack-archive-sync/project/infrastructure/config"
)

// FirestoreRepo は domain.IngestionRepository の Firestore 実装です
type FirestoreRepo struct {
	cli           *firestore.Client
	ingestionsCol string
}

// NewFirestoreRepo は Firestore リポジトリを初期化します
func NewFirestoreRepo(ctx context.Context, cfg *config.Config) (*FirestoreRepo, error) {
	client, err := firestore.NewClient(ctx, cfg.FirestoreProjectID)
	if err != nil {
		return nil, fmt.Errorf("firestore: クライアント初期化失敗: %w", err)
	}

	return &FirestoreRepo{
		cli:           client,
		ingestionsCol: cfg.CollectionIngestion,
	}, nil
}

// Save は取り込み結果を保存します（同一キーは上書き）
func (repo *FirestoreRepo) Save(ctx context.Context, r *domain.IngestionRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("firestore: Save検証失敗: %w", err)
	}

	docID := ingestionDocID(r.EventID, r.FileID)
	docRef := repo.cli.Collection(repo.ingestionsCol).Doc(docID)

	if _, err := docRef.Set(ctx, ingestionData(r), firestore.MergeAll); err != nil {
		return fmt.Errorf("firestore: 取り込み結果保存失敗 (docID=%s): %w", docID, err)
	}

	return nil
}

// Close は Firestore クライアントを閉じます
func (repo *FirestoreRepo) Close() error {
	if repo.cli != nil {
		return repo.cli.Close()
	}
	return nil
}

// ===== ヘルパー =====

// ingestionData は Set(MergeAll) 用のマップを生成します
// MergeAll は構造体を受け付けないためマップで渡す
func ingestionData(r *domain.IngestionRecord) map[string]interface{} {
	objectKeys := r.ObjectKeys
	if objectKeys == nil {
		objectKeys = []string{}
	}
	repoPaths := r.RepositoryPaths
	if repoPaths == nil {
		repoPaths = []string{}
	}

	return map[string]interface{}{
		"event_id":         r.EventID,
		"file_id":          r.FileID,
		"file_name":        r.FileName,
		"title":            r.Title,
		"slug":             r.Slug,
		"date":             r.Date,
		"object_keys":      objectKeys,
		"repository_paths": repoPaths,
		"failures":         r.Failures,
		"status":           r.Status,
		"processed_at":     r.ProcessedAt,
	}
}

// ingestionDocID は取り込み結果のドキュメントID（一意キー）を生成します
// 形式: "event:file"
func ingestionDocID(eventID, fileID string) string {
	return domain.IngestionKey(eventID, fileID)
}
