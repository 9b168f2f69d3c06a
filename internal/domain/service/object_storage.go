package service

import (
	"context"
	"time"
)

// ObjectStorage abstracts the bucket that holds uploaded images.
// Clients upload and download directly through presigned URLs.
type ObjectStorage interface {
	// PresignUpload returns a URL the client can PUT the object to, and when it expires.
	PresignUpload(ctx context.Context, key string) (string, time.Time, error)

	// PresignDownload returns a time-limited GET URL for the object.
	PresignDownload(ctx context.Context, key string) (string, error)

	// Exists reports whether the object was uploaded.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// URLForKey returns the stable public URL stored alongside posts and profiles.
	URLForKey(key string) string

	// KeyFromURL reverses URLForKey. It returns false for URLs outside the bucket.
	KeyFromURL(url string) (string, bool)
}
