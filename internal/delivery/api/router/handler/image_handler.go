package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"community/internal/delivery/api/middleware"
	"community/internal/delivery/api/response"
	domainerrors "community/internal/domain/errors"
	"community/internal/errors"
	"community/internal/usecase"
)

const defaultUploadExtension = "jpg"

// ImageHandlerParams holds dependencies for ImageHandler, injected by Fx.
type ImageHandlerParams struct {
	fx.In

	ImageUC usecase.ImageUsecase
	Logger  *slog.Logger
}

// ImageHandler hands out presigned upload URLs.
type ImageHandler struct {
	imageUC usecase.ImageUsecase
	logger  *slog.Logger
}

func NewImageHandler(params ImageHandlerParams) *ImageHandler {
	return &ImageHandler{
		imageUC: params.ImageUC,
		logger:  params.Logger,
	}
}

// RequestUploadURLs serves GET /images/upload-url?count=3&imageType=POST&fileExtension=png.
func (h *ImageHandler) RequestUploadURLs(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	count, err := strconv.Atoi(c.QueryParam("count"))
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("count must be an integer")
	}

	imageType := usecase.ImageType(strings.ToUpper(c.QueryParam("imageType")))

	ext := c.QueryParam("fileExtension")
	if ext == "" {
		ext = defaultUploadExtension
	}

	urls, err := h.imageUC.RequestUploadURLs(c.Request().Context(), userID, imageType, count, ext)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, urls)
}
