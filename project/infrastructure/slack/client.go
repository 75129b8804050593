package slack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"slack-archive-sync/project/domain"
)

// ダウンロードのタイムアウト
const downloadTimeout = 5 * time.Minute

// FileClient は service.FilePort の Slack SDK 実装です
type FileClient struct {
	cli   *slack.Client
	token string
}

// NewFileClient は Bot トークンで Slack クライアントを初期化します
// トークンが空でも作成でき、その場合はダウンロード時に domain.ErrNotConfigured を返します
func NewFileClient(botToken string, opts ...slack.Option) *FileClient {
	opts = append([]slack.Option{
		slack.OptionHTTPClient(&http.Client{Timeout: downloadTimeout}),
	}, opts...)

	return &FileClient{
		cli:   slack.New(botToken, opts...),
		token: botToken,
	}
}

// Download は url_private のファイルを Authorization: Bearer 付きで取得し w に書き込みます
func (fc *FileClient) Download(ctx context.Context, url string, w io.Writer) error {
	if fc.token == "" {
		return fmt.Errorf("slack: Bot トークン未設定: %w", domain.ErrNotConfigured)
	}
	if url == "" {
		return fmt.Errorf("%w: url_private が空です", domain.ErrFetch)
	}

	if err := fc.cli.GetFileContext(ctx, url, w); err != nil {
		return fmt.Errorf("%w: ダウンロード失敗 (url=%s): %v", domain.ErrFetch, url, err)
	}

	return nil
}
