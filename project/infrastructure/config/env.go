package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"slack-archive-sync/project/domain"
)

// Config は環境変数から読み込まれるアプリケーション設定を表します
// 起動時に一度だけ構築し、以降は読み取り専用として各コンポーネントへ渡します
type Config struct {
	// 基本設定
	Port           string
	LogLevel       string
	GcpProject     string
	Timezone       string
	WorkDir        string
	ProcessTimeout time.Duration
	MaxExtractSize int64

	// Slack API設定
	SlackBotToken      string // Secret Manager から読み込み可
	SlackSigningSecret string // Secret Manager から読み込み可（未設定なら署名検証しない）

	// S3設定
	AWSAccessKeyID     string // Secret Manager から読み込み可
	AWSSecretAccessKey string // Secret Manager から読み込み可
	AWSRegion          string
	S3Bucket           string
	S3Endpoint         string

	// GitHub設定
	GitHubToken   string // Secret Manager から読み込み可
	GitHubRepo    string // "owner/name"
	GitHubBranch  string
	GitHubBaseURL string

	// Firestore設定（未設定なら取り込み結果を記録しない）
	FirestoreProjectID  string
	CollectionIngestion string
}

// SecretSource はシークレットの取得元です（secret.Manager が実装）
type SecretSource interface {
	GetSecret(ctx context.Context, secretName string) (string, error)
}

// Report は起動を止めない設定上の問題をまとめたものです
type Report struct {
	// 未設定の必須項目に対応する環境変数名
	Missing []string
	// Secret Manager の取得失敗（未登録を除く）
	SecretErrors []error
}

// Load は環境変数から設定を読み込みます
//
// 必須項目が欠けていてもエラーにはせず、欠けている環境変数名を report.Missing で返します。
// 呼び出し側はログに記録したうえで起動を継続し、該当機能は呼び出し時に失敗します。
// secrets が nil でない場合、環境変数が空の認証情報は Secret Manager から補完します。
// 未登録のシークレットは未設定として扱い、それ以外の取得失敗は report.SecretErrors に積みます。
func Load(ctx context.Context, secrets SecretSource) (cfg *Config, report Report, err error) {
	processTimeout, err := durationEnv("PROCESS_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, Report{}, err
	}
	maxExtract, err := int64Env("MAX_EXTRACT_BYTES", 0)
	if err != nil {
		return nil, Report{}, err
	}

	secret := func(key, secretName string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if secrets == nil {
			return ""
		}
		v, serr := secrets.GetSecret(ctx, secretName)
		if serr != nil {
			if !errors.Is(serr, domain.ErrNotFound) {
				report.SecretErrors = append(report.SecretErrors, fmt.Errorf("config: シークレット取得失敗 (key=%s): %w", key, serr))
			}
			return ""
		}
		return v
	}

	cfg = &Config{
		// 基本設定
		Port:           getEnv("PORT", "8080"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		GcpProject:     os.Getenv("GCP_PROJECT"),
		Timezone:       getEnv("TIMEZONE", "Asia/Tokyo"),
		WorkDir:        os.Getenv("WORK_DIR"),
		ProcessTimeout: processTimeout,
		MaxExtractSize: maxExtract,

		// Slack API設定
		SlackBotToken:      secret("SLACK_BOT_TOKEN", "slack-bot-token"),
		SlackSigningSecret: secret("SLACK_SIGNING_SECRET", "slack-signing-secret"),

		// S3設定
		AWSAccessKeyID:     secret("AWS_ACCESS_KEY_ID", "aws-access-key-id"),
		AWSSecretAccessKey: secret("AWS_SECRET_ACCESS_KEY", "aws-secret-access-key"),
		AWSRegion:          os.Getenv("AWS_REGION"),
		S3Bucket:           os.Getenv("S3_BUCKET_NAME"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),

		// GitHub設定
		GitHubToken:   secret("GITHUB_TOKEN", "github-token"),
		GitHubRepo:    os.Getenv("GITHUB_REPO"),
		GitHubBranch:  getEnv("GITHUB_BRANCH", "main"),
		GitHubBaseURL: os.Getenv("GITHUB_BASE_URL"),

		// Firestore設定
		FirestoreProjectID:  os.Getenv("FIRESTORE_PROJECT_ID"),
		CollectionIngestion: getEnv("FS_COLLECTION_INGESTIONS", "ingestions"),
	}

	report.Missing = cfg.Missing()
	return cfg, report, nil
}

// Missing は未設定の必須項目に対応する環境変数名を返します
func (c *Config) Missing() []string {
	required := []struct {
		key   string
		value string
	}{
		{"SLACK_BOT_TOKEN", c.SlackBotToken},
		{"AWS_ACCESS_KEY_ID", c.AWSAccessKeyID},
		{"AWS_SECRET_ACCESS_KEY", c.AWSSecretAccessKey},
		{"AWS_REGION", c.AWSRegion},
		{"S3_BUCKET_NAME", c.S3Bucket},
		{"GITHUB_TOKEN", c.GitHubToken},
		{"GITHUB_REPO", c.GitHubRepo},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	return missing
}

// getEnv は環境変数を取得し、空の場合は既定値を返します
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %v", key, err)
	}
	return d, nil
}

func int64Env(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %v", key, err)
	}
	return n, nil
}
