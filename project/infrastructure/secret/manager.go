package secret

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slack-archive-sync/project/domain"
)

// accessAPI は Secret Manager クライアントのうちシークレット取得に必要な部分です
type accessAPI interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// secretmanager.Client の AccessSecretVersion は可変長の CallOption を取るためアダプタで包む
type clientAdapter struct {
	cli *secretmanager.Client
}

func (a clientAdapter) AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	return a.cli.AccessSecretVersion(ctx, req)
}

func (a clientAdapter) Close() error {
	return a.cli.Close()
}

// Manager は Secret Manager を通じて認証情報を取得するクライアントです
// config.SecretSource を実装します
type Manager struct {
	client    accessAPI
	projectID string
}

// NewManager は Secret Manager のマネージャーを初期化します
func NewManager(ctx context.Context, projectID string) (*Manager, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secret manager: クライアント初期化失敗: %w", err)
	}

	return &Manager{
		client:    clientAdapter{cli: client},
		projectID: projectID,
	}, nil
}

// GetSecret は指定されたシークレット名から最新版のシークレット値を取得します
// シークレットが存在しない場合は domain.ErrNotFound を返します
func (m *Manager) GetSecret(ctx context.Context, secretName string) (string, error) {
	// リソース名形式: projects/{project_id}/secrets/{secret_name}/versions/latest
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", m.projectID, secretName)

	result, err := m.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			return "", fmt.Errorf("secret manager: シークレットなし (name=%s): %w", secretName, domain.ErrNotFound)
		}
		return "", fmt.Errorf("secret manager: シークレット取得失敗 (name=%s): %w", secretName, err)
	}

	secret := string(result.GetPayload().GetData())
	if secret == "" {
		return "", fmt.Errorf("secret manager: シークレット値が空です (name=%s): %w", secretName, domain.ErrInvalid)
	}

	return secret, nil
}

// Close は Secret Manager クライアントを閉じます
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
