package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"slack-archive-sync/project/domain"
	"slack-archive-sync/project/handler"
	"slack-archive-sync/project/infrastructure/archive"
	"slack-archive-sync/project/infrastructure/config"
	"slack-archive-sync/project/infrastructure/logger"
	"slack-archive-sync/project/infrastructure/secret"
	"slack-archive-sync/project/infrastructure/slack"
	"slack-archive-sync/project/infrastructure/storage"
	"slack-archive-sync/project/infrastructure/store"
	"slack-archive-sync/project/infrastructure/vcs"
	"slack-archive-sync/project/service"
)

func main() {
	ctx := context.Background()

	// 1. ロガーを初期化
	log, err := logger.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic("ロガー初期化失敗: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	// 2. 設定を読み込む（GCP_PROJECT があれば Secret Manager で認証情報を補完）
	var secrets config.SecretSource
	if project := os.Getenv("GCP_PROJECT"); project != "" {
		secretMgr, err := secret.NewManager(ctx, project)
		if err != nil {
			log.Error("Secret Manager 初期化失敗", zap.Error(err))
		} else {
			defer secretMgr.Close()
			secrets = secretMgr
		}
	}

	cfg, report, err := config.Load(ctx, secrets)
	if err != nil {
		log.Fatal("設定読み込み失敗", zap.Error(err))
	}
	for _, serr := range report.SecretErrors {
		log.Error("Secret Manager からの取得失敗", zap.Error(serr))
	}
	// 必須項目の欠落は起動を止めず、該当機能の呼び出し時に失敗させる
	if len(report.Missing) > 0 {
		log.Error("必須の設定が不足しています", zap.Strings("missing", report.Missing))
	}

	loc, err := domain.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error("タイムゾーン設定が不正なため Asia/Tokyo を使用します", zap.Error(err))
		loc, _ = domain.LoadLocation(domain.DefaultTimezone)
	}

	// 3. 依存関係を初期化
	// Slack ファイル取得
	files := slack.NewFileClient(cfg.SlackBotToken)

	// S3 アップロード
	var objects service.ObjectStorePort
	s3Store, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		log.Error("S3 クライアント初期化失敗", zap.Error(err))
		objects = &storage.S3Store{}
	} else {
		objects = s3Store
	}

	// GitHub 同期
	if _, _, ok := vcs.SplitRepo(cfg.GitHubRepo); !ok && cfg.GitHubRepo != "" {
		log.Error("GITHUB_REPO は owner/name 形式で指定してください", zap.String("value", cfg.GitHubRepo))
	}
	var repo service.RepositoryPort
	ghRepo, err := vcs.NewGitHubRepository(ctx, cfg)
	if err != nil {
		log.Error("GitHub クライアント初期化失敗", zap.Error(err))
		repo = &vcs.GitHubRepository{}
	} else {
		repo = ghRepo
	}

	// 取り込み結果の台帳（任意）
	var ledger domain.IngestionRepository
	if cfg.FirestoreProjectID != "" {
		fsRepo, err := store.NewFirestoreRepo(ctx, cfg)
		if err != nil {
			log.Error("Firestore 初期化失敗", zap.Error(err))
		} else {
			defer fsRepo.Close()
			ledger = fsRepo
		}
	}

	// 4. サービス層を初期化
	ingestService := service.NewIngestService(
		service.IngestOptions{WorkDir: cfg.WorkDir, Location: loc},
		files,
		archive.NewExtractor(cfg.MaxExtractSize),
		objects,
		repo,
		ledger,
		log,
	)

	// 5. HTTP ハンドラーを設定
	mux := http.NewServeMux()

	// Slack イベント受信
	eventsHandler := handler.NewEventsHandler(cfg.SlackSigningSecret, cfg.ProcessTimeout, ingestService, log)
	mux.Handle("/slack/events", eventsHandler)

	// ヘルスチェック
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// 6. サーバー起動
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("サーバー起動", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("サーバーエラー", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("サーバー停止中")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ProcessTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("シャットダウンエラー", zap.Error(err))
	}
	// 応答済みイベントの取り込みを待つ
	if err := eventsHandler.Wait(shutdownCtx); err != nil {
		log.Error("取り込み処理の完了を待てませんでした", zap.Error(err))
	}
	log.Info("サーバー停止")
}
