package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"slack-archive-sync/project/dto"
	"slack-archive-sync/project/infrastructure/httpsec"
	"slack-archive-sync/project/service"
)

const (
	// 既定の処理タイムアウト
	defaultProcessTimeout = 60 * time.Second
	// Events API のペイロード上限
	maxEventBodyBytes = 4 << 20
)

// EventsHandler は Slack Events API からのイベントを処理します
type EventsHandler struct {
	signingSecret  string
	processTimeout time.Duration
	ingestService  service.IngestService
	logger         *zap.Logger

	// 応答後に走る取り込み処理
	inflight sync.WaitGroup
}

// NewEventsHandler はイベントハンドラーを作成します
// signingSecret が空の場合は署名検証を行いません
func NewEventsHandler(signingSecret string, processTimeout time.Duration, ingestService service.IngestService, logger *zap.Logger) *EventsHandler {
	if processTimeout <= 0 {
		processTimeout = defaultProcessTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{
		signingSecret:  signingSecret,
		processTimeout: processTimeout,
		ingestService:  ingestService,
		logger:         logger,
	}
}

// ServeHTTP は Slack イベント受信エンドポイントです
// 不正な JSON 以外は、後続処理の成否にかかわらず 200 で応答します
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// リクエスト本体を読み込む
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "リクエスト本体の読み込み失敗", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !json.Valid(body) {
		http.Error(w, "JSON パース失敗", http.StatusBadRequest)
		return
	}

	// 型が合わないなど想定外の形のイベントは対象外として扱う
	var req dto.SlackEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Warn("想定外のイベント形式", zap.Error(err))
		writeJSON(w, map[string]string{"message": "event received"})
		return
	}

	disp := service.Classify(&req)

	// URL 検証は他の処理より先に同期応答する
	if disp.Kind == service.DispositionVerify {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(disp.Challenge))
		return
	}

	if h.signingSecret != "" {
		if err := httpsec.VerifySlackSignature(h.signingSecret, r.Header, body); err != nil {
			h.logger.Warn("署名検証失敗", zap.Error(err))
			http.Error(w, "署名検証失敗", http.StatusUnauthorized)
			return
		}
	}

	log := h.logger.With(
		zap.String("event_id", req.EventID),
		zap.String("disposition", disp.Kind.String()),
	)
	if retry := r.Header.Get("X-Slack-Retry-Num"); retry != "" {
		log.Info("Slack からの再送を受信",
			zap.String("retry_num", retry),
			zap.String("retry_reason", r.Header.Get("X-Slack-Retry-Reason")),
		)
	}

	switch disp.Kind {
	case service.DispositionIgnore:
		log.Debug("対象外のメッセージを無視", zap.String("subtype", req.Event.SubType))
		writeJSON(w, map[string]string{"status": "ignored"})

	case service.DispositionProcess:
		// Slack の再送を避けるため先に応答し、取り込みは独立したコンテキストで続行する
		h.inflight.Add(1)
		go func(ev *service.MessageEvent) {
			defer h.inflight.Done()
			ctx, cancel := context.WithTimeout(context.Background(), h.processTimeout)
			defer cancel()

			h.ingestService.Ingest(ctx, ev)
		}(disp.Event)
		writeJSON(w, map[string]string{"status": "ok"})

	default:
		if req.Type == dto.TypeEventCallback {
			writeJSON(w, map[string]string{"status": "ok"})
			return
		}
		writeJSON(w, map[string]string{"message": "event received"})
	}
}

// Wait は実行中の取り込み処理の終了を待ちます
// ctx が先に終了した場合は ctx.Err() を返します
func (h *EventsHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writeJSON は 200 で JSON を返します
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
