package impl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community/internal/domain/entity"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/errors"
	"community/internal/infra/persistence/model"
	"community/internal/testutil"
	"community/internal/usecase"
)

func TestUserService_SignUp_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	srv := env.userService()

	user, err := srv.SignUp(ctx, usecase.SignUpInput{
		Email:    "new@example.com",
		Password: "fresh-pass1!",
		Nickname: "newbie",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Nil(t, user.ProfileImage)

	verified, err := env.credentialService().Verify(ctx, "new@example.com", "fresh-pass1!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestUserService_SignUp_WithProfileImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	srv := env.userService()
	key := "images/profiles/0/avatar.png"
	env.upload(t, key)

	user, err := srv.SignUp(ctx, usecase.SignUpInput{
		Email:           "pic@example.com",
		Password:        "fresh-pass1!",
		Nickname:        "pictured",
		ProfileImageKey: &key,
	})
	require.NoError(t, err)
	require.NotNil(t, user.ProfileImage)
	assert.Equal(t, testPublicBaseURL+"/"+key, *user.ProfileImage)

	info, err := srv.GetMe(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "pic@example.com", info.Email)
	require.NotNil(t, info.ProfileImageURL)
	assert.Contains(t, *info.ProfileImageURL, "http://localhost:8080/files")
}

func TestUserService_SignUp_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	srv := env.userService()
	testutil.NewUserBuilder().WithEmail("taken@example.com").WithNickname("taken").Build(t, env.db)
	missingKey := "images/profiles/0/missing.png"

	tests := []struct {
		name    string
		input   usecase.SignUpInput
		wantErr error
	}{
		{
			name:    "duplicate email",
			input:   usecase.SignUpInput{Email: "taken@example.com", Password: "fresh-pass1!", Nickname: "other"},
			wantErr: domainerrors.ErrDuplicateEmail,
		},
		{
			name:    "duplicate nickname",
			input:   usecase.SignUpInput{Email: "free@example.com", Password: "fresh-pass1!", Nickname: "taken"},
			wantErr: domainerrors.ErrDuplicateNickname,
		},
		{
			name:    "weak password",
			input:   usecase.SignUpInput{Email: "free@example.com", Password: "password", Nickname: "other"},
			wantErr: domainerrors.ErrInvalidPassword,
		},
		{
			name:    "profile image not uploaded",
			input:   usecase.SignUpInput{Email: "free@example.com", Password: "fresh-pass1!", Nickname: "other", ProfileImageKey: &missingKey},
			wantErr: domainerrors.ErrImageNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := srv.SignUp(ctx, tt.input)
			require.Error(t, err)
			assert.Nil(t, user)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	available, err := srv.CheckEmailAvailable(ctx, "free@example.com")
	require.NoError(t, err)
	assert.True(t, available)
}

func TestUserService_CheckEmailAndPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	srv := env.userService()
	testutil.NewUserBuilder().WithEmail("exists@example.com").Build(t, env.db)

	available, err := srv.CheckEmailAvailable(ctx, "exists@example.com")
	require.NoError(t, err)
	assert.False(t, available)

	assert.True(t, srv.CheckPasswordValid("abcdefg1!"))
	assert.False(t, srv.CheckPasswordValid("abcdefgh1"))
	assert.False(t, srv.CheckPasswordValid("short1!"))
}

func TestUserService_ChangeNickname(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	srv := env.userService()
	me := testutil.NewUserBuilder().WithNickname("mine").Build(t, env.db)
	testutil.NewUserBuilder().WithNickname("theirs").Build(t, env.db)

	err := srv.ChangeNickname(ctx, me.ID, "mine")
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidNickname))

	err = srv.ChangeNickname(ctx, me.ID, "theirs")
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateNickname))

	require.NoError(t, srv.ChangeNickname(ctx, me.ID, "renamed"))

	info, err := srv.GetMe(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", info.Nickname)
	assert.Nil(t, info.ProfileImageURL)
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	srv := env.userService()
	me := testutil.NewUserBuilder().WithEmail("pw@example.com").Build(t, env.db)

	tests := []struct {
		name  string
		input usecase.ChangePasswordInput
	}{
		{name: "wrong current password", input: usecase.ChangePasswordInput{CurrentPassword: "nope-pass1!", NewPassword: "other-pass1!"}},
		{name: "unchanged password", input: usecase.ChangePasswordInput{CurrentPassword: testutil.DefaultPassword, NewPassword: testutil.DefaultPassword}},
		{name: "weak password", input: usecase.ChangePasswordInput{CurrentPassword: testutil.DefaultPassword, NewPassword: "weakweak"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := srv.ChangePassword(ctx, me.ID, tt.input)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidPassword), "got %v", err)
		})
	}

	require.NoError(t, srv.ChangePassword(ctx, me.ID, usecase.ChangePasswordInput{
		CurrentPassword: testutil.DefaultPassword,
		NewPassword:     "brand-new-pass1!",
	}))

	_, err := env.credentialService().Verify(ctx, "pw@example.com", testutil.DefaultPassword)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	_, err = env.credentialService().Verify(ctx, "pw@example.com", "brand-new-pass1!")
	assert.NoError(t, err)
}

func TestUserService_ProfileImageLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	srv := env.userService()
	me := testutil.NewUserBuilder().Build(t, env.db)

	err := srv.UpdateProfileImage(ctx, me.ID, "images/profiles/1/none.png")
	assert.True(t, errors.Is(err, domainerrors.ErrImageNotFound))

	first, second := "images/profiles/1/first.png", "images/profiles/1/second.png"
	env.upload(t, first)
	env.upload(t, second)

	require.NoError(t, srv.UpdateProfileImage(ctx, me.ID, first))
	require.NoError(t, srv.UpdateProfileImage(ctx, me.ID, second))
	assert.False(t, env.objectExists(t, first), "replaced image is removed from storage")
	assert.True(t, env.objectExists(t, second))

	require.NoError(t, srv.DeleteProfileImage(ctx, me.ID))
	assert.False(t, env.objectExists(t, second))

	user, err := env.userRepo.FindByID(ctx, me.ID)
	require.NoError(t, err)
	assert.Nil(t, user.ProfileImage)

	require.NoError(t, srv.DeleteProfileImage(ctx, me.ID))
}

func TestUserService_Withdraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := testutil.Context(t)
	srv := env.userService()
	leaver := testutil.NewUserBuilder().Build(t, env.db)
	stayer := testutil.NewUserBuilder().Build(t, env.db)

	ownPost := testutil.CreatePost(t, env.db, leaver.ID, "leaving soon")
	strangerComment := testutil.CreateComment(t, env.db, ownPost.ID, stayer.ID, "see you")

	otherPost := testutil.CreatePost(t, env.db, stayer.ID, "staying")
	testutil.CreateComment(t, env.db, otherPost.ID, leaver.ID, "bye")
	testutil.CreateComment(t, env.db, otherPost.ID, stayer.ID, "stay")
	require.NoError(t, env.likeService().Like(ctx, leaver.ID, otherPost.ID))

	require.NoError(t, env.refreshRepo.Save(ctx, &entity.RefreshToken{
		Token:     "leaver-token",
		UserID:    leaver.ID,
		Email:     leaver.Email,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, srv.Withdraw(ctx, leaver.ID))

	_, err := env.userRepo.FindByID(ctx, leaver.ID)
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))

	_, err = env.postRepo.FindByID(ctx, ownPost.ID)
	assert.True(t, errors.Is(err, repository.ErrPostNotFound))

	_, err = env.commentRepo.FindByID(ctx, strangerComment.ID)
	assert.True(t, errors.Is(err, repository.ErrCommentNotFound))

	counts := testutil.Counts(t, env.db, otherPost.ID)
	assert.Equal(t, int64(1), counts.CommentCount)
	assert.Equal(t, int64(0), counts.LikeCount)

	page, err := env.commentRepo.ListByPost(ctx, otherPost.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "stay", page.Items[0].Content)

	tokens, err := env.refreshRepo.FindByUserID(ctx, leaver.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	var rows int64
	require.NoError(t, env.db.Model(&model.UserModel{}).Where("id = ?", leaver.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows, "withdrawn user row is kept")

	err = srv.Withdraw(ctx, leaver.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}
