package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"

	"community/config"
	"community/internal/domain/service"
)

func newTestStorage(t *testing.T) (service.ObjectStorage, *blob.Bucket) {
	t.Helper()

	baseURL, err := url.Parse("http://localhost:8080/files")
	require.NoError(t, err)

	bucket, err := fileblob.OpenBucket(t.TempDir(), &fileblob.Options{
		URLSigner: fileblob.NewURLSignerHMAC(baseURL, []byte("signing-secret")),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bucket.Close() })

	cfg := &config.Config{Storage: &config.StorageConfig{
		PublicBaseURL:  "https://cdn.example.com/",
		UploadURLTTL:   10 * time.Minute,
		DownloadURLTTL: 30 * time.Minute,
	}}

	return NewObjectStorage(bucket, cfg), bucket
}

func TestBlobStorage_PresignUpload(t *testing.T) {
	storage, _ := newTestStorage(t)

	signed, expiresAt, err := storage.PresignUpload(context.Background(), "images/posts/1/a.png")
	require.NoError(t, err)
	assert.Contains(t, signed, "http://localhost:8080/files")
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)

	download, err := storage.PresignDownload(context.Background(), "images/posts/1/a.png")
	require.NoError(t, err)
	assert.NotEqual(t, signed, download)
}

func TestBlobStorage_ExistsAndDelete(t *testing.T) {
	storage, bucket := newTestStorage(t)
	ctx := context.Background()
	key := "images/profiles/1/me.png"

	exists, err := storage.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, bucket.WriteAll(ctx, key, []byte("png"), nil))

	exists, err = storage.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, storage.Delete(ctx, key))
	require.NoError(t, storage.Delete(ctx, key), "deleting a missing object is not an error")

	exists, err = storage.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBlobStorage_URLMapping(t *testing.T) {
	storage, _ := newTestStorage(t)

	u := storage.URLForKey("images/posts/1/a.png")
	assert.Equal(t, "https://cdn.example.com/images/posts/1/a.png", u)

	key, ok := storage.KeyFromURL(u)
	assert.True(t, ok)
	assert.Equal(t, "images/posts/1/a.png", key)

	_, ok = storage.KeyFromURL("https://elsewhere.example.com/x.png")
	assert.False(t, ok)
}
