package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"slack-archive-sync/project/domain"
	"slack-archive-sync/project/infrastructure/config"
)

// GitHubRepository は service.RepositoryPort の GitHub Contents API 実装です
type GitHubRepository struct {
	cli    *gh.Client
	owner  string
	repo   string
	branch string
}

// NewGitHubRepository は GitHub クライアントを初期化します
// GitHubBaseURL が設定されている場合は GitHub Enterprise として接続します
func NewGitHubRepository(ctx context.Context, cfg *config.Config) (*GitHubRepository, error) {
	var httpClient *http.Client
	if cfg.GitHubToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	cli := gh.NewClient(httpClient)
	if baseURL := strings.TrimRight(cfg.GitHubBaseURL, "/"); baseURL != "" {
		var err error
		cli, err = cli.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("github: Enterprise URL 設定失敗 (url=%s): %w", baseURL, err)
		}
	}

	owner, repo, _ := SplitRepo(cfg.GitHubRepo)
	return newGitHubRepository(cli, owner, repo, cfg.GitHubBranch), nil
}

func newGitHubRepository(cli *gh.Client, owner, repo, branch string) *GitHubRepository {
	return &GitHubRepository{cli: cli, owner: owner, repo: repo, branch: branch}
}

// SplitRepo は "owner/name" 形式のリポジトリ識別子を分割します
func SplitRepo(fullName string) (owner, repo string, ok bool) {
	owner, repo, ok = strings.Cut(strings.TrimSpace(fullName), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}

// Upsert はファイルを作成または更新します
//
// 既存ファイルの SHA を取得して UpdateFile に渡し、存在しない場合（404）は CreateFile します。
// 取得と書き込みの間に別の更新が入った場合は競合エラーとなり、再試行はしません。
// 既存の内容と同一の場合は空コミットを避けるため更新しません。
func (g *GitHubRepository) Upsert(ctx context.Context, filePath string, content []byte, message string) error {
	if g.owner == "" || g.repo == "" {
		return fmt.Errorf("github: リポジトリ未設定 (path=%s): %w", filePath, domain.ErrNotConfigured)
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: content,
	}
	var getOpts *gh.RepositoryContentGetOptions
	if g.branch != "" {
		opts.Branch = gh.String(g.branch)
		getOpts = &gh.RepositoryContentGetOptions{Ref: g.branch}
	}

	current, dir, resp, err := g.cli.Repositories.GetContents(ctx, g.owner, g.repo, filePath, getOpts)
	switch {
	case err == nil && current != nil:
		if existing, derr := current.GetContent(); derr == nil && bytes.Equal([]byte(existing), content) {
			return nil
		}
		opts.SHA = current.SHA
		if _, _, err := g.cli.Repositories.UpdateFile(ctx, g.owner, g.repo, filePath, opts); err != nil {
			return fmt.Errorf("github: ファイル更新失敗 (path=%s): %w", filePath, err)
		}
		return nil

	case err == nil && dir != nil:
		return fmt.Errorf("github: 同名のディレクトリが存在します (path=%s): %w", filePath, domain.ErrInvalid)

	case err == nil:
		return fmt.Errorf("github: 内容を取得できませんでした (path=%s): %w", filePath, domain.ErrInvalid)

	case isNotFound(resp, err):
		if _, _, err := g.cli.Repositories.CreateFile(ctx, g.owner, g.repo, filePath, opts); err != nil {
			return fmt.Errorf("github: ファイル作成失敗 (path=%s): %w", filePath, err)
		}
		return nil

	default:
		return fmt.Errorf("github: ファイル取得失敗 (path=%s): %w", filePath, err)
	}
}

// isNotFound は GitHub API の 404 応答を判定するヘルパー関数です
func isNotFound(resp *gh.Response, err error) bool {
	if err == nil {
		return false
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *gh.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
