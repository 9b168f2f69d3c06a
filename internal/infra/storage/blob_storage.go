// Package storage implements object storage on gocloud.dev/blob, so the same code serves
// S3 in production and a local directory in development.
package storage

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	"community/config"
	"community/internal/domain/lifecycle"
	"community/internal/domain/service"
	"community/internal/errors"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the configured bucket and closes it on stop.
func New(params Params) (*blob.Bucket, error) {
	cfg := params.Config.Storage
	if cfg == nil || cfg.BucketURL == "" {
		return nil, errors.New("storage bucket URL must be provided")
	}

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	bucket, err := blob.OpenBucket(ctx, cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %q", cfg.BucketURL)
	}

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			params.Logger.Info("Object storage opened", slog.String("bucket", cfg.BucketURL))
			return nil
		},
		OnStop: func(_ context.Context) error {
			return bucket.Close()
		},
	})

	return bucket, nil
}

type blobStorage struct {
	bucket        *blob.Bucket
	publicBaseURL string
	uploadTTL     time.Duration
	downloadTTL   time.Duration
	now           func() time.Time
}

// NewObjectStorage adapts a bucket to service.ObjectStorage.
func NewObjectStorage(bucket *blob.Bucket, cfg *config.Config) service.ObjectStorage {
	s := &blobStorage{
		bucket:      bucket,
		uploadTTL:   15 * time.Minute,
		downloadTTL: time.Hour,
		now:         time.Now,
	}
	if cfg != nil && cfg.Storage != nil {
		s.publicBaseURL = strings.TrimRight(cfg.Storage.PublicBaseURL, "/")
		if cfg.Storage.UploadURLTTL > 0 {
			s.uploadTTL = cfg.Storage.UploadURLTTL
		}
		if cfg.Storage.DownloadURLTTL > 0 {
			s.downloadTTL = cfg.Storage.DownloadURLTTL
		}
	}

	return s
}

func (s *blobStorage) PresignUpload(ctx context.Context, key string) (string, time.Time, error) {
	expiresAt := s.now().Add(s.uploadTTL)
	url, err := s.bucket.SignedURL(ctx, key, &blob.SignedURLOptions{
		Expiry:                   s.uploadTTL,
		Method:                   http.MethodPut,
		EnforceAbsentContentType: true,
	})
	if err != nil {
		return "", time.Time{}, errors.Wrapf(err, "failed to presign upload of %s", key)
	}

	return url, expiresAt, nil
}

func (s *blobStorage) PresignDownload(ctx context.Context, key string) (string, error) {
	url, err := s.bucket.SignedURL(ctx, key, &blob.SignedURLOptions{
		Expiry: s.downloadTTL,
		Method: http.MethodGet,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to presign download of %s", key)
	}

	return url, nil
}

func (s *blobStorage) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return false, errors.Wrapf(err, "failed to check object %s", key)
	}

	return exists, nil
}

func (s *blobStorage) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrapf(err, "failed to delete object %s", key)
	}

	return nil
}

func (s *blobStorage) URLForKey(key string) string {
	if s.publicBaseURL == "" {
		return key
	}

	return s.publicBaseURL + "/" + key
}

func (s *blobStorage) KeyFromURL(url string) (string, bool) {
	if s.publicBaseURL == "" {
		return url, url != ""
	}

	key, ok := strings.CutPrefix(url, s.publicBaseURL+"/")
	if !ok || key == "" {
		return "", false
	}

	return key, true
}
