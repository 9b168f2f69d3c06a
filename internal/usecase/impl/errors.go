// Package impl contains the implementation of the application's business logic.
package impl

import (
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/errors"
)

// repositoryErrors maps persistence sentinels to the errors reported to clients.
var repositoryErrors = []struct {
	from error
	to   *domainerrors.BaseError
}{
	{repository.ErrUserNotFound, domainerrors.ErrUserNotFound},
	{repository.ErrPostNotFound, domainerrors.ErrPostNotFound},
	{repository.ErrPostCountNotFound, domainerrors.ErrPostNotFound},
	{repository.ErrCommentNotFound, domainerrors.ErrCommentNotFound},
	{repository.ErrLikeNotFound, domainerrors.ErrLikeNotFound},
	{repository.ErrRefreshTokenNotFound, domainerrors.ErrInvalidRefreshToken},
	{repository.ErrSessionNotFound, domainerrors.ErrSessionExpiredOrMissing},
}

// translate replaces a known repository sentinel with its domain error and annotates it.
// Unknown errors are only annotated.
func translate(err error, message string) error {
	if err == nil {
		return nil
	}

	if _, ok := errors.AsType[domainerrors.AppError](err); ok {
		return errors.Wrap(err, message)
	}

	for _, m := range repositoryErrors {
		if errors.Is(err, m.from) {
			return errors.Wrap(m.to, message+": "+err.Error())
		}
	}

	return errors.Wrap(err, message)
}
