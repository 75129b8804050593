package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-archive-sync/project/domain"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, params)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestS3Store_Put(t *testing.T) {
	fake := &fakeS3{}
	st := newS3Store(fake, "archive-bucket")
	local := writeTemp(t, "c.png", "png-bytes")

	err := st.Put(context.Background(), "events/2024-05-01/title/sub/c.png", local)

	require.NoError(t, err)
	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "archive-bucket", aws.ToString(in.Bucket))
	assert.Equal(t, "events/2024-05-01/title/sub/c.png", aws.ToString(in.Key))
	assert.Equal(t, "image/png", aws.ToString(in.ContentType))
	assert.Equal(t, "png-bytes", fake.bodies[0])
}

func TestS3Store_Put_NotConfigured(t *testing.T) {
	st := newS3Store(&fakeS3{}, "")

	err := st.Put(context.Background(), "events/x", writeTemp(t, "x", "x"))

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestS3Store_Put_ClientError(t *testing.T) {
	apiErr := errors.New("AccessDenied")
	st := newS3Store(&fakeS3{err: apiErr}, "archive-bucket")

	err := st.Put(context.Background(), "events/x.txt", writeTemp(t, "x.txt", "x"))

	assert.ErrorIs(t, err, apiErr)
}

func TestS3Store_Put_MissingFile(t *testing.T) {
	st := newS3Store(&fakeS3{}, "archive-bucket")

	err := st.Put(context.Background(), "events/x.txt", filepath.Join(t.TempDir(), "missing"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}
