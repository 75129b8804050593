package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"slack-archive-sync/project/domain"
	"slack-archive-sync/project/infrastructure/config"
)

// putObjectAPI は S3 クライアントのうちアップロードに必要な部分です
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store は service.ObjectStorePort の S3 実装です
type S3Store struct {
	cli    putObjectAPI
	bucket string
}

// NewS3Store は設定から S3 クライアントを初期化します
// アクセスキーが未設定の場合は SDK の既定の認証情報チェーンを使います
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: 設定読み込み失敗: %w", err)
	}

	cli := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// MinIO など S3 互換ストレージ向け
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(cli, cfg.S3Bucket), nil
}

func newS3Store(cli putObjectAPI, bucket string) *S3Store {
	return &S3Store{cli: cli, bucket: bucket}
}

// Put は localPath のファイルを key にアップロードします（同一キーは上書き）
func (st *S3Store) Put(ctx context.Context, key, localPath string) error {
	if st.cli == nil || st.bucket == "" {
		return fmt.Errorf("s3: バケット未設定 (key=%s): %w", key, domain.ErrNotConfigured)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("s3: ファイルオープン失敗 (key=%s): %w", key, err)
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(st.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := st.cli.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3: アップロード失敗 (bucket=%s, key=%s): %w", st.bucket, key, err)
	}

	return nil
}
