package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"slack-archive-sync/project/domain"
)

// routeTree は展開ディレクトリ配下の通常ファイルを走査し、種別ごとにシンクへ振り分けます
// シンクへの書き込み失敗はファイル単位で記録し、残りのファイルの処理は継続します
func (s *ingestService) routeTree(ctx context.Context, log *zap.Logger, treeDir string, rec *domain.IngestionRecord) error {
	return filepath.WalkDir(treeDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(treeDir, p)
		if err != nil {
			return err
		}

		f := domain.NewRoutedFile(p, rel)
		dest, err := s.route(ctx, f, rec)
		if err != nil {
			log.Error("シンクへの書き込み失敗",
				zap.String("path", f.RelativePath),
				zap.Stringer("class", f.Classification),
				zap.String("dest", dest),
				zap.Error(err),
			)
			rec.Failures++
			return nil
		}

		log.Debug("ファイル振り分け完了",
			zap.String("path", f.RelativePath),
			zap.Stringer("class", f.Classification),
			zap.String("dest", dest),
		)
		return nil
	})
}

// route は1ファイルを種別に応じたシンクへ書き込み、書き込み先を返します
func (s *ingestService) route(ctx context.Context, f domain.RoutedFile, rec *domain.IngestionRecord) (string, error) {
	switch f.Classification {
	case domain.ClassMarkdown:
		dest := domain.RepositoryPath(f.RelativePath)
		content, err := os.ReadFile(f.LocalPath)
		if err != nil {
			return dest, fmt.Errorf("ingest: ファイル読み込み失敗 (path=%s): %w", f.RelativePath, err)
		}
		message := fmt.Sprintf("Sync %s from Slack", filepath.Base(f.LocalPath))
		if err := s.repo.Upsert(ctx, dest, content, message); err != nil {
			return dest, err
		}
		rec.RepositoryPaths = append(rec.RepositoryPaths, dest)
		return dest, nil

	default:
		dest := domain.ObjectKey(rec.Date, rec.Slug, f.RelativePath)
		if err := s.objects.Put(ctx, dest, f.LocalPath); err != nil {
			return dest, err
		}
		rec.ObjectKeys = append(rec.ObjectKeys, dest)
		return dest, nil
	}
}
