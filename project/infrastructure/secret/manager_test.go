package secret

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slack-archive-sync/project/domain"
)

type fakeAccess struct {
	lastName string
	data     []byte
	err      error
	closed   bool
}

func (f *fakeAccess) AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.lastName = req.GetName()
	if f.err != nil {
		return nil, f.err
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Payload: &secretmanagerpb.SecretPayload{Data: f.data},
	}, nil
}

func (f *fakeAccess) Close() error {
	f.closed = true
	return nil
}

func TestManager_GetSecret(t *testing.T) {
	fake := &fakeAccess{data: []byte("xoxb-123")}
	m := &Manager{client: fake, projectID: "proj"}

	v, err := m.GetSecret(context.Background(), "slack-bot-token")

	require.NoError(t, err)
	assert.Equal(t, "xoxb-123", v)
	assert.Equal(t, "projects/proj/secrets/slack-bot-token/versions/latest", fake.lastName)
}

func TestManager_GetSecret_NotFound(t *testing.T) {
	m := &Manager{client: &fakeAccess{err: status.Error(codes.NotFound, "no such secret")}, projectID: "proj"}

	_, err := m.GetSecret(context.Background(), "github-token")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManager_GetSecret_Empty(t *testing.T) {
	m := &Manager{client: &fakeAccess{data: nil}, projectID: "proj"}

	_, err := m.GetSecret(context.Background(), "github-token")

	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestManager_GetSecret_OtherError(t *testing.T) {
	boom := errors.New("unavailable")
	m := &Manager{client: &fakeAccess{err: boom}, projectID: "proj"}

	_, err := m.GetSecret(context.Background(), "github-token")

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestManager_Close(t *testing.T) {
	fake := &fakeAccess{}
	m := &Manager{client: fake}

	require.NoError(t, m.Close())
	assert.True(t, fake.closed)
}
