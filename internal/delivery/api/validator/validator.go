// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "community/internal/domain/errors"
	"community/internal/errors"
)

var (
	nicknamePattern = regexp.MustCompile(`^[a-zA-Z가-힣0-9_]+$`)
	imageKeyPattern = regexp.MustCompile(`^images/(posts|profiles)/\d+/.+\.(jpg|jpeg|png|gif|webp)$`)
)

// CustomValidator validates request DTOs through their `validate` struct tags.
type CustomValidator struct {
	validate *validator.Validate
}

// New builds a validator with the board's custom tags registered:
// `nickname` for display names and `imagekey` for uploaded object keys.
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterValidation("nickname", matches(nicknamePattern))
	_ = v.RegisterValidation("imagekey", matches(imageKeyPattern))

	return &CustomValidator{validate: v}
}

// Validate returns ErrValidationFailed carrying the offending fields as details.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.WithStack(err)
	}

	failed := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		failed = append(failed, fe.Field()+":"+fe.Tag())
	}

	return domainerrors.ErrValidationFailed.WithDetails(strings.Join(failed, ","))
}

func matches(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}
