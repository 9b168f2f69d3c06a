package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "community/internal/delivery/context"
	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/errors"
	"community/internal/usecase"

	"go.uber.org/fx"
)

// commentService implements the CommentUsecase interface.
type commentService struct {
	txManager   repository.TransactionManager
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	now         func() time.Time
	logger      *slog.Logger
}

// CommentServiceParams holds dependencies for CommentService, injected by Fx.
type CommentServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	PostRepo    repository.PostRepository
	CommentRepo repository.CommentRepository
	Logger      *slog.Logger
}

// NewCommentService is the constructor for commentService.
func NewCommentService(params CommentServiceParams) usecase.CommentUsecase {
	return &commentService{
		txManager:   params.TxManager,
		postRepo:    params.PostRepo,
		commentRepo: params.CommentRepo,
		now:         time.Now,
		logger:      params.Logger,
	}
}

func (srv *commentService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *commentService) List(ctx context.Context, postID int64, cursor *int64, size int, viewerID int64) (*entity.CursorPage[*usecase.CommentView], error) {
	if _, err := srv.postRepo.FindByID(ctx, postID); err != nil {
		return nil, translate(err, "failed to load post")
	}

	page, err := srv.commentRepo.ListByPost(ctx, postID, cursor, usecase.NormalizePageSize(size, usecase.DefaultCommentPageSize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list comments")
	}

	items := make([]*usecase.CommentView, 0, len(page.Items))
	for _, comment := range page.Items {
		items = append(items, &usecase.CommentView{
			ID:             comment.ID,
			PostID:         comment.PostID,
			AuthorID:       comment.AuthorID,
			AuthorNickname: comment.AuthorNickname(),
			Content:        comment.Content,
			CreatedAt:      comment.CreatedAt,
			UpdatedAt:      comment.UpdatedAt,
			IsMine:         viewerID != 0 && comment.IsOwnedBy(viewerID),
		})
	}

	return &entity.CursorPage[*usecase.CommentView]{
		Items:      items,
		NextCursor: page.NextCursor,
		HasNext:    page.HasNext,
	}, nil
}

// Write adds a comment and bumps the post's comment count in the same transaction.
func (srv *commentService) Write(ctx context.Context, userID, postID int64, content string) (int64, error) {
	comment := &entity.Comment{
		PostID:   postID,
		AuthorID: userID,
		Content:  content,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.PostRepo().FindByID(ctx, postID); err != nil {
			return translate(err, "failed to load post")
		}

		if err := repoFactory.CommentRepo().Create(ctx, comment); err != nil {
			return translate(err, "failed to create comment")
		}

		return translate(
			repoFactory.PostCountRepo().Increment(ctx, postID, entity.CountFieldComment, 1),
			"failed to increment comment count",
		)
	})
	if err != nil {
		return 0, err
	}

	srv.log(ctx).Debug("Comment written", slog.Int64("comment_id", comment.ID), slog.Int64("post_id", postID))

	return comment.ID, nil
}

func (srv *commentService) Modify(ctx context.Context, userID, commentID int64, content string) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		comment, err := srv.ownedComment(ctx, repoFactory, userID, commentID)
		if err != nil {
			return err
		}

		comment.Content = content

		return translate(repoFactory.CommentRepo().Update(ctx, comment), "failed to update comment")
	})
}

// Remove soft-deletes the comment and lowers the post's comment count.
func (srv *commentService) Remove(ctx context.Context, userID, commentID int64) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		comment, err := srv.ownedComment(ctx, repoFactory, userID, commentID)
		if err != nil {
			return err
		}

		if err := repoFactory.CommentRepo().SoftDelete(ctx, commentID, srv.now()); err != nil {
			return translate(err, "failed to delete comment")
		}

		return translate(
			repoFactory.PostCountRepo().Increment(ctx, comment.PostID, entity.CountFieldComment, -1),
			"failed to decrement comment count",
		)
	})
}

func (srv *commentService) ownedComment(ctx context.Context, repoFactory repository.RepositoryFactory, userID, commentID int64) (*entity.Comment, error) {
	comment, err := repoFactory.CommentRepo().FindByID(ctx, commentID)
	if err != nil {
		return nil, translate(err, "failed to load comment")
	}

	if !comment.IsOwnedBy(userID) {
		srv.log(ctx).Warn("Rejected comment change by non-author", slog.Int64("comment_id", commentID), slog.Int64("user_id", userID))

		return nil, errors.Wrap(domainerrors.ErrUnauthorized, "only the author may change the comment")
	}

	return comment, nil
}
