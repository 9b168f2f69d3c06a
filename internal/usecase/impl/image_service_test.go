package impl

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainerrors "community/internal/domain/errors"
	"community/internal/errors"
	"community/internal/testutil"
	"community/internal/usecase"
)

func TestImageService_RequestUploadURLs(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	srv := NewImageService(ImageServiceParams{Storage: env.storage, Logger: env.logger})

	urls, err := srv.RequestUploadURLs(ctx, 7, usecase.ImageTypePost, 3, ".PNG")
	require.NoError(t, err)
	require.Len(t, urls, 3)

	keyPattern := regexp.MustCompile(`^images/posts/7/\d+_[0-9a-f-]{8}\.png$`)
	keys := map[string]struct{}{}
	for _, url := range urls {
		assert.Regexp(t, keyPattern, url.ImageKey)
		assert.Contains(t, url.PresignedURL, "http://localhost:8080/files")
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), url.ExpiresAt, 5*time.Second)
		keys[url.ImageKey] = struct{}{}
	}
	assert.Len(t, keys, 3)

	profile, err := srv.RequestUploadURLs(ctx, 7, usecase.ImageTypeProfile, 1, "webp")
	require.NoError(t, err)
	require.Len(t, profile, 1)
	assert.Regexp(t, `^images/profiles/7/`, profile[0].ImageKey)
}

func TestImageService_RequestUploadURLs_Validation(t *testing.T) {
	srv := NewImageService(ImageServiceParams{Storage: &mockObjectStorage{}, Logger: newDiscardLogger()})
	ctx := testutil.Context(t)

	tests := []struct {
		name      string
		imageType usecase.ImageType
		count     int
		ext       string
		wantErr   error
	}{
		{name: "executable extension", imageType: usecase.ImageTypePost, count: 1, ext: "exe", wantErr: domainerrors.ErrInvalidFileType},
		{name: "empty extension", imageType: usecase.ImageTypePost, count: 1, ext: "", wantErr: domainerrors.ErrInvalidFileType},
		{name: "zero post images", imageType: usecase.ImageTypePost, count: 0, ext: "jpg", wantErr: domainerrors.ErrInvalidImageCount},
		{name: "too many post images", imageType: usecase.ImageTypePost, count: 11, ext: "jpg", wantErr: domainerrors.ErrInvalidImageCount},
		{name: "two profile images", imageType: usecase.ImageTypeProfile, count: 2, ext: "jpg", wantErr: domainerrors.ErrInvalidImageCount},
		{name: "unknown type", imageType: usecase.ImageType("BANNER"), count: 1, ext: "jpg", wantErr: domainerrors.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls, err := srv.RequestUploadURLs(ctx, 1, tt.imageType, tt.count, tt.ext)
			require.Error(t, err)
			assert.Nil(t, urls)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestImageService_RequestUploadURLs_PresignFailure(t *testing.T) {
	objects := &mockObjectStorage{}
	objects.On("PresignUpload", mock.Anything, mock.AnythingOfType("string")).
		Return("", time.Time{}, errors.New("signer offline"))
	srv := NewImageService(ImageServiceParams{Storage: objects, Logger: newDiscardLogger()})

	_, err := srv.RequestUploadURLs(testutil.Context(t), 1, usecase.ImageTypePost, 2, "png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signer offline")
	objects.AssertNumberOfCalls(t, "PresignUpload", 1)
}
