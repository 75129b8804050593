package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slack-archive-sync/project/domain"
)

const (
	archiveFileName = "archive.zip"
	treeDirName     = "tree"
)

// IngestService は添付アーカイブの取り込みを行うサービスです
type IngestService interface {
	// Ingest はメッセージの添付ファイルを順に取得・展開し、各シンクへ振り分けます
	// 個々の添付ファイルやファイル単位の失敗はログに記録し、呼び出し元へは返しません
	Ingest(ctx context.Context, ev *MessageEvent) IngestSummary
}

// IngestOptions は取り込み処理の設定です
type IngestOptions struct {
	// WorkDir は一時ファイルの作成先（空の場合は os.TempDir()）
	WorkDir string

	// Location は日付パーティションのタイムゾーン（nil の場合は JST）
	Location *time.Location

	// Now は現在時刻の取得関数（テスト用、nil の場合は time.Now）
	Now func() time.Time
}

// ingestService は IngestService の実装です
type ingestService struct {
	opts    IngestOptions
	files   FilePort
	archive ArchivePort
	objects ObjectStorePort
	repo    RepositoryPort
	ledger  domain.IngestionRepository
	logger  *zap.Logger
}

// NewIngestService は IngestService のインスタンスを作成します
// ledger は nil でも構いません（取り込み結果を記録しない）
func NewIngestService(
	opts IngestOptions,
	files FilePort,
	archive ArchivePort,
	objects ObjectStorePort,
	repo RepositoryPort,
	ledger domain.IngestionRepository,
	logger *zap.Logger,
) IngestService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ingestService{
		opts:    opts,
		files:   files,
		archive: archive,
		objects: objects,
		repo:    repo,
		ledger:  ledger,
		logger:  logger,
	}
}

// Ingest は添付ファイルを1件ずつ処理します
func (s *ingestService) Ingest(ctx context.Context, ev *MessageEvent) IngestSummary {
	var sum IngestSummary
	if ev == nil {
		return sum
	}

	eventID := ev.EventID
	if eventID == "" {
		eventID = "delivery-" + uuid.NewString()
	}
	log := s.logger.With(zap.String("event_id", eventID), zap.String("channel", ev.ChannelID))

	for _, a := range ev.Files {
		sum.Attachments++

		if !a.IsZipArchive() {
			log.Info("ZIP 以外の添付ファイルをスキップ",
				zap.String("file", a.Name),
				zap.String("mimetype", a.Mimetype),
			)
			sum.Skipped++
			continue
		}

		rec := s.processAttachment(ctx, log, eventID, ev.Text, a)
		sum.Uploaded += len(rec.ObjectKeys)
		sum.Synced += len(rec.RepositoryPaths)
		sum.SinkErrors += rec.Failures
		if rec.Status == domain.StatusFetchFailed || rec.Status == domain.StatusExtractFailed {
			sum.Failed++
		}

		s.record(ctx, log, rec)
	}

	log.Info("イベント処理完了",
		zap.Int("attachments", sum.Attachments),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
		zap.Int("uploaded", sum.Uploaded),
		zap.Int("synced", sum.Synced),
		zap.Int("sink_errors", sum.SinkErrors),
	)
	return sum
}

// processAttachment は1件の添付ファイルを 取得 → 展開 → 振り分け → 後片付け の順に処理します
// 作業ディレクトリはどの経路で抜けても削除されます
func (s *ingestService) processAttachment(ctx context.Context, log *zap.Logger, eventID, text string, a domain.Attachment) *domain.IngestionRecord {
	title := domain.TitleFor(text, a)
	rec := &domain.IngestionRecord{
		EventID:  eventID,
		FileID:   a.ID,
		FileName: a.Name,
		Title:    title,
		Slug:     domain.Slugify(title),
		Date:     domain.FormatDate(s.opts.Now(), s.opts.Location),
	}
	if rec.FileID == "" {
		rec.FileID = "file-" + uuid.NewString()
	}
	log = log.With(zap.String("file", a.Name), zap.String("file_id", rec.FileID))

	workDir, err := os.MkdirTemp(s.opts.WorkDir, "ingest-"+uuid.NewString()+"-*")
	if err != nil {
		log.Error("作業ディレクトリ作成失敗", zap.Error(err))
		rec.Status = domain.StatusFetchFailed
		return rec
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("作業ディレクトリ削除失敗", zap.String("dir", workDir), zap.Error(err))
		}
	}()

	archivePath := filepath.Join(workDir, archiveFileName)
	if err := s.download(ctx, a.URLPrivate, archivePath); err != nil {
		log.Error("添付ファイル取得失敗", zap.Error(err))
		rec.Status = domain.StatusFetchFailed
		return rec
	}

	treeDir := filepath.Join(workDir, treeDirName)
	if err := s.archive.Extract(archivePath, treeDir); err != nil {
		log.Error("アーカイブ展開失敗", zap.Error(err))
		rec.Status = domain.StatusExtractFailed
		return rec
	}

	// 展開後はアーカイブ本体を先に解放する
	if err := os.Remove(archivePath); err != nil {
		log.Warn("アーカイブ削除失敗", zap.Error(err))
	}

	if err := s.routeTree(ctx, log, treeDir, rec); err != nil {
		log.Error("展開ディレクトリの走査失敗", zap.Error(err))
		rec.Failures++
	}

	rec.Status = domain.StatusCompleted
	if rec.Failures > 0 {
		rec.Status = domain.StatusPartial
	}
	return rec
}

// download は添付ファイルを archivePath に保存します
func (s *ingestService) download(ctx context.Context, url, archivePath string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("ingest: アーカイブファイル作成失敗: %w", err)
	}

	if err := s.files.Download(ctx, url, f); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("ingest: アーカイブファイル書き込み失敗: %w", err)
	}
	return nil
}

// record は取り込み結果を台帳に保存します（失敗してもログのみ）
func (s *ingestService) record(ctx context.Context, log *zap.Logger, rec *domain.IngestionRecord) {
	if s.ledger == nil {
		return
	}
	rec.ProcessedAt = s.opts.Now().Unix()
	if err := s.ledger.Save(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			log.Warn("取り込み結果の検証失敗", zap.Error(err))
			return
		}
		log.Error("取り込み結果の保存失敗", zap.Error(err))
	}
}
