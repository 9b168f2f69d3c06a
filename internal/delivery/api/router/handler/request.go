// Package handler contains the HTTP handlers of the API server.
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
)

// bindAndValidate decodes the JSON body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed request body")
	}

	return c.Validate(req)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.ErrValidationFailed.WithDetails(name + " must be a positive integer")
	}

	return id, nil
}

// pageQuery reads the optional `cursor` and `size` query parameters.
// A missing size is returned as 0 and replaced by the use case default.
func pageQuery(c echo.Context) (*int64, int, error) {
	var cursor *int64
	if raw := c.QueryParam("cursor"); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || value <= 0 {
			return nil, 0, domainerrors.ErrValidationFailed.WithDetails("cursor must be a positive integer")
		}
		cursor = &value
	}

	size := 0
	if raw := c.QueryParam("size"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, 0, domainerrors.ErrValidationFailed.WithDetails("size must be an integer")
		}
		size = value
	}

	return cursor, size, nil
}

// pageResponse is the wire form of a cursor page.
type pageResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor *int64 `json:"nextCursor"`
	HasNext    bool   `json:"hasNext"`
}

func toPageResponse[T any](page *entity.CursorPage[T]) pageResponse[T] {
	items := page.Items
	if items == nil {
		items = []T{}
	}

	return pageResponse[T]{
		Items:      items,
		NextCursor: page.NextCursor,
		HasNext:    page.HasNext,
	}
}
