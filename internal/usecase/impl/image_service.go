package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	deliverycontext "community/internal/delivery/context"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/service"
	"community/internal/errors"
	"community/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

var allowedImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
}

var imageKeyPrefixes = map[usecase.ImageType]string{
	usecase.ImageTypePost:    "images/posts",
	usecase.ImageTypeProfile: "images/profiles",
}

// imageService implements the ImageUsecase interface.
type imageService struct {
	storage service.ObjectStorage
	now     func() time.Time
	logger  *slog.Logger
}

// ImageServiceParams holds dependencies for ImageService, injected by Fx.
type ImageServiceParams struct {
	fx.In

	Storage service.ObjectStorage
	Logger  *slog.Logger
}

// NewImageService is the constructor for imageService.
func NewImageService(params ImageServiceParams) usecase.ImageUsecase {
	return &imageService{
		storage: params.Storage,
		now:     time.Now,
		logger:  params.Logger,
	}
}

func (srv *imageService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RequestUploadURLs returns count presigned PUT URLs under the user's key prefix.
// Post uploads accept 1 to 10 images, profile uploads exactly one.
func (srv *imageService) RequestUploadURLs(ctx context.Context, userID int64, imageType usecase.ImageType, count int, ext string) ([]*usecase.UploadURL, error) {
	prefix, ok := imageKeyPrefixes[imageType]
	if !ok {
		return nil, errors.Wrapf(domainerrors.ErrValidationFailed, "unknown image type %q", imageType)
	}

	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return nil, errors.Wrapf(domainerrors.ErrInvalidFileType, "extension %q", ext)
	}

	switch {
	case imageType == usecase.ImageTypeProfile && count != 1:
		return nil, errors.Wrap(domainerrors.ErrInvalidImageCount, "profile upload takes exactly one image")
	case count < 1 || count > usecase.MaxPostImages:
		return nil, errors.Wrapf(domainerrors.ErrInvalidImageCount, "count must be between 1 and %d", usecase.MaxPostImages)
	}

	urls := make([]*usecase.UploadURL, 0, count)
	for range count {
		key := fmt.Sprintf("%s/%d/%d_%s.%s", prefix, userID, srv.now().Unix(), uuid.NewString()[:8], ext)

		url, expiresAt, err := srv.storage.PresignUpload(ctx, key)
		if err != nil {
			return nil, errors.Wrap(err, "failed to presign upload")
		}

		urls = append(urls, &usecase.UploadURL{
			PresignedURL: url,
			ImageKey:     key,
			ExpiresAt:    expiresAt,
		})
	}

	srv.log(ctx).Debug("Issued upload URLs", slog.Int64("user_id", userID), slog.String("type", string(imageType)), slog.Int("count", count))

	return urls, nil
}
