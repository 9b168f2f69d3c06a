package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community/internal/domain/entity"
	"community/internal/domain/repository"
	"community/internal/errors"
	"community/internal/testutil"
)

func TestTransactionManager_CommitsOnSuccess(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := testutil.Context(t)
	author := testutil.NewUserBuilder().Build(t, db)
	post := testutil.CreatePost(t, db, author.ID, "post")

	err := NewTransactionManager(db).Execute(ctx, func(f repository.RepositoryFactory) error {
		if err := f.CommentRepo().Create(ctx, &entity.Comment{PostID: post.ID, AuthorID: author.ID, Content: "hi"}); err != nil {
			return err
		}

		return f.PostCountRepo().Increment(ctx, post.ID, entity.CountFieldComment, 1)
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), testutil.Counts(t, db, post.ID).CommentCount)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := testutil.Context(t)
	author := testutil.NewUserBuilder().Build(t, db)
	post := testutil.CreatePost(t, db, author.ID, "post")
	boom := errors.New("boom")

	err := NewTransactionManager(db).Execute(ctx, func(f repository.RepositoryFactory) error {
		if err := f.PostCountRepo().Increment(ctx, post.ID, entity.CountFieldLike, 1); err != nil {
			return err
		}
		if err := f.PostRepo().SoftDelete(ctx, post.ID, time.Now()); err != nil {
			return err
		}

		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, int64(0), testutil.Counts(t, db, post.ID).LikeCount)
	_, err = NewPostRepository(db).FindByID(ctx, post.ID)
	assert.NoError(t, err)
}

func TestTransactionManager_RollsBackOnPanic(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := testutil.Context(t)
	author := testutil.NewUserBuilder().Build(t, db)
	post := testutil.CreatePost(t, db, author.ID, "post")

	assert.Panics(t, func() {
		_ = NewTransactionManager(db).Execute(ctx, func(f repository.RepositoryFactory) error {
			_ = f.PostCountRepo().Increment(ctx, post.ID, entity.CountFieldView, 1)
			panic("boom")
		})
	})

	assert.Equal(t, int64(0), testutil.Counts(t, db, post.ID).ViewCount)
}
