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

// postService implements the PostUsecase interface.
type postService struct {
	txManager     repository.TransactionManager
	postRepo      repository.PostRepository
	postCountRepo repository.PostCountRepository
	storage       service.ObjectStorage
	now           func() time.Time
	logger        *slog.Logger
}

// PostServiceParams holds dependencies for PostService, injected by Fx.
type PostServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	PostRepo      repository.PostRepository
	PostCountRepo repository.PostCountRepository
	Storage       service.ObjectStorage
	Logger        *slog.Logger
}

// NewPostService is the constructor for postService.
func NewPostService(params PostServiceParams) usecase.PostUsecase {
	return &postService{
		txManager:     params.TxManager,
		postRepo:      params.PostRepo,
		postCountRepo: params.PostCountRepo,
		storage:       params.Storage,
		now:           time.Now,
		logger:        params.Logger,
	}
}

func (srv *postService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create stores the post, its images and a zeroed aggregate in one transaction.
// Every image key must already exist in object storage.
func (srv *postService) Create(ctx context.Context, userID int64, input usecase.CreatePostInput) (int64, error) {
	if len(input.ImageKeys) > usecase.MaxPostImages {
		return 0, errors.Wrapf(domainerrors.ErrInvalidImageCount, "at most %d images per post", usecase.MaxPostImages)
	}

	images := make([]*entity.Image, 0, len(input.ImageKeys))
	for i, key := range input.ImageKeys {
		exists, err := srv.storage.Exists(ctx, key)
		if err != nil {
			return 0, errors.Wrap(err, "failed to check uploaded image")
		}
		if !exists {
			srv.log(ctx).Warn("Post references a missing image", slog.String("key", key))

			return 0, errors.Wrap(domainerrors.ErrImageNotFound, key)
		}
		images = append(images, &entity.Image{URL: srv.storage.URLForKey(key), DisplayOrder: i})
	}

	post := &entity.Post{
		Title:    input.Title,
		Content:  input.Content,
		AuthorID: userID,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.PostRepo().Create(ctx, post); err != nil {
			return translate(err, "failed to create post")
		}

		if err := repoFactory.PostCountRepo().Create(ctx, &entity.PostCount{PostID: post.ID}); err != nil {
			return errors.Wrap(err, "failed to create post count")
		}

		if len(images) == 0 {
			return nil
		}
		for _, image := range images {
			image.PostID = post.ID
		}

		return errors.Wrap(repoFactory.ImageRepo().CreateBatch(ctx, images), "failed to create post images")
	})
	if err != nil {
		return 0, err
	}

	srv.log(ctx).Info("Post created", slog.Int64("post_id", post.ID), slog.Int64("user_id", userID), slog.Int("images", len(images)))

	return post.ID, nil
}

// List returns a page of posts. Posts without an aggregate row show zero counts.
func (srv *postService) List(ctx context.Context, cursor *int64, size int) (*entity.CursorPage[*usecase.PostSummary], error) {
	page, err := srv.postRepo.List(ctx, cursor, usecase.NormalizePageSize(size, usecase.DefaultPostPageSize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list posts")
	}

	ids := make([]int64, 0, len(page.Items))
	for _, post := range page.Items {
		ids = append(ids, post.ID)
	}

	counts, err := srv.postCountRepo.FindByPostIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load post counts")
	}

	items := make([]*usecase.PostSummary, 0, len(page.Items))
	for _, post := range page.Items {
		items = append(items, &usecase.PostSummary{
			ID:             post.ID,
			Title:          post.Title,
			AuthorNickname: post.AuthorNickname(),
			CreatedAt:      post.CreatedAt,
			Counts:         toCounts(counts[post.ID]),
		})
	}

	return &entity.CursorPage[*usecase.PostSummary]{
		Items:      items,
		NextCursor: page.NextCursor,
		HasNext:    page.HasNext,
	}, nil
}

// Get counts one view and returns the post with presigned image URLs.
func (srv *postService) Get(ctx context.Context, postID, viewerID int64) (*usecase.PostDetail, error) {
	var (
		post   *entity.Post
		count  *entity.PostCount
		images []*entity.Image
		liked  bool
	)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		post, err = repoFactory.PostRepo().FindByID(ctx, postID)
		if err != nil {
			return translate(err, "failed to load post")
		}

		// A post without an aggregate row is shown with zero counts.
		err = repoFactory.PostCountRepo().Increment(ctx, postID, entity.CountFieldView, 1)
		if err != nil && !errors.Is(err, repository.ErrPostCountNotFound) {
			return errors.Wrap(err, "failed to count view")
		}

		count, err = repoFactory.PostCountRepo().FindByPostID(ctx, postID)
		if err != nil && !errors.Is(err, repository.ErrPostCountNotFound) {
			return errors.Wrap(err, "failed to load post count")
		}

		images, err = repoFactory.ImageRepo().ListByPostID(ctx, postID)
		if err != nil {
			return errors.Wrap(err, "failed to load post images")
		}

		if viewerID != 0 {
			liked, err = repoFactory.LikeRepo().ExistsActive(ctx, viewerID, postID)
			if err != nil {
				return errors.Wrap(err, "failed to load like state")
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(images))
	for _, image := range images {
		key, ok := srv.storage.KeyFromURL(image.URL)
		if !ok {
			urls = append(urls, image.URL)

			continue
		}
		url, err := srv.storage.PresignDownload(ctx, key)
		if err != nil {
			return nil, errors.Wrap(err, "failed to presign post image")
		}
		urls = append(urls, url)
	}

	return &usecase.PostDetail{
		ID:             post.ID,
		Title:          post.Title,
		Content:        post.Content,
		AuthorID:       post.AuthorID,
		AuthorNickname: post.AuthorNickname(),
		ImageURLs:      urls,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
		IsMine:         viewerID != 0 && post.IsOwnedBy(viewerID),
		IsLiked:        liked,
		Counts:         toCounts(count),
	}, nil
}

func (srv *postService) Modify(ctx context.Context, userID, postID int64, input usecase.ModifyPostInput) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		post, err := repoFactory.PostRepo().FindByID(ctx, postID)
		if err != nil {
			return translate(err, "failed to load post")
		}

		if !post.IsOwnedBy(userID) {
			srv.log(ctx).Warn("Rejected post modification by non-author", slog.Int64("post_id", postID), slog.Int64("user_id", userID))

			return errors.Wrap(domainerrors.ErrUnauthorized, "only the author may modify the post")
		}

		if input.Title != nil {
			post.Title = *input.Title
		}
		if input.Content != nil {
			post.Content = *input.Content
		}

		return translate(repoFactory.PostRepo().Update(ctx, post), "failed to update post")
	})
}

// Delete soft-deletes the post with its comments and images, then removes the
// image objects. Storage failures are logged and do not undo the deletion.
func (srv *postService) Delete(ctx context.Context, userID, postID int64) error {
	var images []*entity.Image

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		post, err := repoFactory.PostRepo().FindByID(ctx, postID)
		if err != nil {
			return translate(err, "failed to load post")
		}

		if !post.IsOwnedBy(userID) {
			srv.log(ctx).Warn("Rejected post deletion by non-author", slog.Int64("post_id", postID), slog.Int64("user_id", userID))

			return errors.Wrap(domainerrors.ErrUnauthorized, "only the author may delete the post")
		}

		images, err = deletePostTree(ctx, repoFactory, postID, srv.now())

		return err
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Post deleted", slog.Int64("post_id", postID), slog.Int64("user_id", userID))
	removeImageObjects(ctx, srv.storage, srv.log(ctx), images)

	return nil
}

// deletePostTree soft-deletes a post together with its comments and images and
// returns the images that were attached.
func deletePostTree(ctx context.Context, repoFactory repository.RepositoryFactory, postID int64, at time.Time) ([]*entity.Image, error) {
	images, err := repoFactory.ImageRepo().ListByPostID(ctx, postID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load post images")
	}

	if err := repoFactory.PostRepo().SoftDelete(ctx, postID, at); err != nil {
		return nil, translate(err, "failed to delete post")
	}

	if _, err := repoFactory.CommentRepo().SoftDeleteByPostID(ctx, postID, at); err != nil {
		return nil, errors.Wrap(err, "failed to delete comments of post")
	}

	if err := repoFactory.ImageRepo().SoftDeleteByPostID(ctx, postID, at); err != nil {
		return nil, errors.Wrap(err, "failed to delete images of post")
	}

	return images, nil
}

// removeImageObjects deletes stored objects on a best-effort basis.
func removeImageObjects(ctx context.Context, storage service.ObjectStorage, logger *slog.Logger, images []*entity.Image) {
	for _, image := range images {
		key, ok := storage.KeyFromURL(image.URL)
		if !ok {
			continue
		}
		if err := storage.Delete(ctx, key); err != nil {
			logger.Warn("Failed to delete image object", slog.String("key", key), slog.Any("error", err))
		}
	}
}

// decrementIgnoringMissing lowers a counter of a post that may already be gone.
func decrementIgnoringMissing(ctx context.Context, repoFactory repository.RepositoryFactory, postID int64, field entity.CountField) error {
	err := repoFactory.PostCountRepo().Increment(ctx, postID, field, -1)
	if err == nil || errors.Is(err, repository.ErrPostCountNotFound) {
		return nil
	}

	return errors.Wrapf(err, "failed to decrement %s", field)
}

func toCounts(count *entity.PostCount) usecase.Counts {
	if count == nil {
		return usecase.Counts{}
	}

	return usecase.Counts{
		ViewCount:    count.ViewCount,
		LikeCount:    count.LikeCount,
		CommentCount: count.CommentCount,
	}
}
