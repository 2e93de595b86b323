package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/scampozano/deepurge/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeS3 struct {
	objects map[string][]byte

	putErr error
	getErr error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func newFakeS3Store() (*S3Store, *fakeS3) {
	f := &fakeS3{objects: map[string][]byte{}}
	return &S3Store{client: f, bucket: "vault"}, f
}

func TestS3Store_UploadDownloadRoundTrip(t *testing.T) {
	store, _ := newFakeS3Store()
	ctx := context.Background()

	key, err := store.Upload(ctx, []byte("ciphertext"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "vault/"), "keys use date-based prefixes")

	got, err := store.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), got)
}

func TestS3Store_UniqueKeysPerUpload(t *testing.T) {
	store, _ := newFakeS3Store()
	ctx := context.Background()

	k1, err := store.Upload(ctx, []byte("a"))
	require.NoError(t, err)
	k2, err := store.Upload(ctx, []byte("a"))
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestS3Store_DownloadNoSuchKey(t *testing.T) {
	store, _ := newFakeS3Store()

	_, err := store.Download(context.Background(), "vault/absent")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestS3Store_TransportErrors(t *testing.T) {
	store, fake := newFakeS3Store()
	ctx := context.Background()

	fake.putErr = errors.New("connection refused")
	_, err := store.Upload(ctx, []byte("x"))
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)

	fake.getErr = errors.New("connection refused")
	_, err = store.Download(ctx, "vault/key")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}
