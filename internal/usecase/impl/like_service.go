package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "community/internal/delivery/context"
	"community/internal/domain/entity"
	"community/internal/domain/repository"
	"community/internal/errors"
	"community/internal/usecase"

	"go.uber.org/fx"
)

// errLikeRaced aborts the transaction of a like whose row a concurrent request inserted first.
var errLikeRaced = errors.New("like inserted concurrently")

// likeService implements the LikeUsecase interface.
type likeService struct {
	txManager repository.TransactionManager
	likeRepo  repository.LikeRepository
	now       func() time.Time
	logger    *slog.Logger
}

// LikeServiceParams holds dependencies for LikeService, injected by Fx.
type LikeServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	LikeRepo  repository.LikeRepository
	Logger    *slog.Logger
}

// NewLikeService is the constructor for likeService.
func NewLikeService(params LikeServiceParams) usecase.LikeUsecase {
	return &likeService{
		txManager: params.TxManager,
		likeRepo:  params.LikeRepo,
		now:       time.Now,
		logger:    params.Logger,
	}
}

func (srv *likeService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Like is a no-op for an active like, restores a soft-deleted one and inserts
// otherwise. The like count moves only when the row state actually changed.
func (srv *likeService) Like(ctx context.Context, userID, postID int64) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.PostRepo().FindByID(ctx, postID); err != nil {
			return translate(err, "failed to load post")
		}

		likeRepo := repoFactory.LikeRepo()
		like, err := likeRepo.Find(ctx, userID, postID)
		switch {
		case errors.Is(err, repository.ErrLikeNotFound):
			if err := likeRepo.Create(ctx, &entity.Like{UserID: userID, PostID: postID}); err != nil {
				if errors.Is(err, repository.ErrLikeAlreadyExists) {
					return errLikeRaced
				}

				return translate(err, "failed to create like")
			}
		case err != nil:
			return errors.Wrap(err, "failed to load like")
		case like.IsActive():
			return nil
		default:
			changed, err := likeRepo.Restore(ctx, userID, postID)
			if err != nil {
				return errors.Wrap(err, "failed to restore like")
			}
			if !changed {
				return nil
			}
		}

		return translate(
			repoFactory.PostCountRepo().Increment(ctx, postID, entity.CountFieldLike, 1),
			"failed to increment like count",
		)
	})
	if errors.Is(err, errLikeRaced) {
		srv.log(ctx).Debug("Like already inserted by a concurrent request", slog.Int64("post_id", postID), slog.Int64("user_id", userID))

		return nil
	}

	return err
}

// Unlike soft-deletes an active like. A missing row is ErrLikeNotFound, an
// already removed one is a no-op.
func (srv *likeService) Unlike(ctx context.Context, userID, postID int64) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.PostRepo().FindByID(ctx, postID); err != nil {
			return translate(err, "failed to load post")
		}

		likeRepo := repoFactory.LikeRepo()
		if _, err := likeRepo.Find(ctx, userID, postID); err != nil {
			return translate(err, "failed to load like")
		}

		changed, err := likeRepo.SoftDelete(ctx, userID, postID, srv.now())
		if err != nil {
			return errors.Wrap(err, "failed to delete like")
		}
		if !changed {
			return nil
		}

		return translate(
			repoFactory.PostCountRepo().Increment(ctx, postID, entity.CountFieldLike, -1),
			"failed to decrement like count",
		)
	})
}

func (srv *likeService) IsLiked(ctx context.Context, userID, postID int64) (bool, error) {
	liked, err := srv.likeRepo.ExistsActive(ctx, userID, postID)
	if err != nil {
		return false, errors.Wrap(err, "failed to load like state")
	}

	return liked, nil
}
