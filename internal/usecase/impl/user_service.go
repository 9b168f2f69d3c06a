package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "community/internal/delivery/context"
	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/domain/service"
	"community/internal/errors"
	"community/internal/usecase"

	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.PasswordHasher
	storage          service.ObjectStorage
	now              func() time.Time
	logger           *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	Storage          service.ObjectStorage
	Logger           *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		storage:          params.Storage,
		now:              time.Now,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SignUp registers a user after checking password strength and uniqueness.
func (srv *userService) SignUp(ctx context.Context, input usecase.SignUpInput) (*entity.User, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	var profileImage *string
	if input.ProfileImageKey != nil && *input.ProfileImageKey != "" {
		url, err := srv.requireUploadedImage(ctx, *input.ProfileImageKey)
		if err != nil {
			return nil, err
		}
		profileImage = &url
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	user := &entity.User{
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Nickname:     input.Nickname,
		ProfileImage: profileImage,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		taken, err := userRepo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return errors.Wrap(err, "failed to check email")
		}
		if taken {
			return errors.Wrap(domainerrors.ErrDuplicateEmail, input.Email)
		}

		taken, err = userRepo.ExistsByNickname(ctx, input.Nickname, 0)
		if err != nil {
			return errors.Wrap(err, "failed to check nickname")
		}
		if taken {
			return errors.Wrap(domainerrors.ErrDuplicateNickname, input.Nickname)
		}

		if err := userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrUserAlreadyExists) {
				return errors.Wrap(domainerrors.ErrDuplicateEmail, err.Error())
			}

			return errors.Wrap(err, "failed to create user during registration")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Registration completed", slog.Int64("user_id", user.ID))

	return user, nil
}

func (srv *userService) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := srv.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, errors.Wrap(err, "failed to check email")
	}

	return !taken, nil
}

func (srv *userService) CheckPasswordValid(password string) bool {
	return srv.hasher.ValidatePasswordStrength(password) == nil
}

func (srv *userService) GetMe(ctx context.Context, userID int64) (*usecase.UserInfo, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "failed to load user")
	}

	info := &usecase.UserInfo{
		ID:       user.ID,
		Email:    user.Email,
		Nickname: user.Nickname,
	}

	if user.ProfileImage != nil {
		if key, ok := srv.storage.KeyFromURL(*user.ProfileImage); ok {
			url, err := srv.storage.PresignDownload(ctx, key)
			if err != nil {
				return nil, errors.Wrap(err, "failed to presign profile image")
			}
			info.ProfileImageURL = &url
		}
	}

	return info, nil
}

func (srv *userService) ChangeNickname(ctx context.Context, userID int64, nickname string) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return translate(err, "failed to load user")
		}

		if user.Nickname == nickname {
			return errors.Wrap(domainerrors.ErrInvalidNickname, "nickname is unchanged")
		}

		taken, err := userRepo.ExistsByNickname(ctx, nickname, userID)
		if err != nil {
			return errors.Wrap(err, "failed to check nickname")
		}
		if taken {
			return errors.Wrap(domainerrors.ErrDuplicateNickname, nickname)
		}

		user.Nickname = nickname
		if err := userRepo.Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrUserAlreadyExists) {
				return errors.Wrap(domainerrors.ErrDuplicateNickname, err.Error())
			}

			return translate(err, "failed to update nickname")
		}

		return nil
	})
}

func (srv *userService) ChangePassword(ctx context.Context, userID int64, input usecase.ChangePasswordInput) error {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return translate(err, "failed to load user")
	}

	if !srv.hasher.Check(input.CurrentPassword, user.PasswordHash) {
		return errors.Wrap(domainerrors.ErrInvalidPassword, "current password does not match")
	}
	if input.CurrentPassword == input.NewPassword {
		return errors.Wrap(domainerrors.ErrInvalidPassword, "new password equals the current one")
	}
	if err := srv.hasher.ValidatePasswordStrength(input.NewPassword); err != nil {
		return err
	}

	hashedPassword, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	user.PasswordHash = hashedPassword
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return translate(err, "failed to update password")
	}

	srv.log(ctx).Info("Password changed", slog.Int64("user_id", userID))

	return nil
}

// UpdateProfileImage points the profile at an uploaded object and removes the previous one.
func (srv *userService) UpdateProfileImage(ctx context.Context, userID int64, imageKey string) error {
	url, err := srv.requireUploadedImage(ctx, imageKey)
	if err != nil {
		return err
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return translate(err, "failed to load user")
	}

	previous := user.ProfileImage
	user.ProfileImage = &url
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return translate(err, "failed to update profile image")
	}

	if previous != nil && *previous != url {
		srv.deleteObjectByURL(ctx, *previous)
	}

	return nil
}

func (srv *userService) DeleteProfileImage(ctx context.Context, userID int64) error {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return translate(err, "failed to load user")
	}

	if user.ProfileImage == nil {
		return nil
	}

	previous := *user.ProfileImage
	user.ProfileImage = nil
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return translate(err, "failed to clear profile image")
	}

	srv.deleteObjectByURL(ctx, previous)

	return nil
}

// Withdraw soft-deletes the user, their posts with everything attached, their
// remaining comments and their likes. Aggregates of other users' posts are
// decremented for every removed comment and like.
func (srv *userService) Withdraw(ctx context.Context, userID int64) error {
	at := srv.now()
	var images []*entity.Image

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.UserRepo().FindByID(ctx, userID); err != nil {
			return translate(err, "failed to load user")
		}

		postIDs, err := repoFactory.PostRepo().ListIDsByAuthor(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list posts of user")
		}
		for _, postID := range postIDs {
			removed, err := deletePostTree(ctx, repoFactory, postID, at)
			if err != nil {
				return err
			}
			images = append(images, removed...)
		}

		comments, err := repoFactory.CommentRepo().ListByAuthor(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list comments of user")
		}
		for _, comment := range comments {
			if err := repoFactory.CommentRepo().SoftDelete(ctx, comment.ID, at); err != nil {
				return translate(err, "failed to delete comment")
			}
			if err := decrementIgnoringMissing(ctx, repoFactory, comment.PostID, entity.CountFieldComment); err != nil {
				return err
			}
		}

		likes, err := repoFactory.LikeRepo().ListActiveByUser(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list likes of user")
		}
		for _, like := range likes {
			changed, err := repoFactory.LikeRepo().SoftDelete(ctx, userID, like.PostID, at)
			if err != nil {
				return errors.Wrap(err, "failed to delete like")
			}
			if !changed {
				continue
			}
			if err := decrementIgnoringMissing(ctx, repoFactory, like.PostID, entity.CountFieldLike); err != nil {
				return err
			}
		}

		if err := repoFactory.UserRepo().SoftDelete(ctx, userID, at); err != nil {
			return translate(err, "failed to withdraw user")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to withdraw user", slog.Int64("user_id", userID), slog.Any("error", err))

		return err
	}

	if err := srv.refreshTokenRepo.DeleteByUserID(ctx, userID); err != nil {
		srv.log(ctx).Warn("Failed to revoke refresh tokens of withdrawn user", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	srv.log(ctx).Info("User withdrawn", slog.Int64("user_id", userID))
	removeImageObjects(ctx, srv.storage, srv.log(ctx), images)

	return nil
}

func (srv *userService) requireUploadedImage(ctx context.Context, key string) (string, error) {
	exists, err := srv.storage.Exists(ctx, key)
	if err != nil {
		return "", errors.Wrap(err, "failed to check uploaded image")
	}
	if !exists {
		return "", errors.Wrap(domainerrors.ErrImageNotFound, key)
	}

	return srv.storage.URLForKey(key), nil
}

func (srv *userService) deleteObjectByURL(ctx context.Context, url string) {
	key, ok := srv.storage.KeyFromURL(url)
	if !ok {
		return
	}

	if err := srv.storage.Delete(ctx, key); err != nil {
		srv.log(ctx).Warn("Failed to delete stored image", slog.String("key", key), slog.Any("error", err))
	}
}
