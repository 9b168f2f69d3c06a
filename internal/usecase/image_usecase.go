package usecase

import (
	"context"
	"time"
)

// ImageType selects the key prefix and count bounds of an upload request.
type ImageType string

const (
	ImageTypePost    ImageType = "POST"
	ImageTypeProfile ImageType = "PROFILE"
)

// UploadURL is one presigned PUT target.
type UploadURL struct {
	PresignedURL string    `json:"presignedUrl"`
	ImageKey     string    `json:"imageKey"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// ImageUsecase hands out presigned upload URLs.
type ImageUsecase interface {
	RequestUploadURLs(ctx context.Context, userID int64, imageType ImageType, count int, ext string) ([]*UploadURL, error)
}
