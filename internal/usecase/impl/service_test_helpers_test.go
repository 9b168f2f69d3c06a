package impl

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"community/config"
	"community/internal/domain/repository"
	"community/internal/domain/service"
	"community/internal/infra/auth"
	"community/internal/infra/persistence/postgres"
	"community/internal/infra/storage"
	"community/internal/testutil"
	"community/internal/usecase"
)

const testPublicBaseURL = "https://cdn.example.com"

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:      bcrypt.MinCost,
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 14 * 24 * time.Hour,
			SessionTTL:      time.Hour,
		},
		Storage: &config.StorageConfig{
			PublicBaseURL:  testPublicBaseURL,
			UploadURLTTL:   15 * time.Minute,
			DownloadURLTTL: time.Hour,
		},
	}
	cfg.SecretKey.Access = "access-secret-for-tests"
	cfg.SecretKey.Refresh = "refresh-secret-for-tests"

	return cfg
}

// testEnv wires the services against an in-memory SQLite database and a
// file-backed bucket.
type testEnv struct {
	cfg          *config.Config
	db           *gorm.DB
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	countRepo    repository.PostCountRepository
	commentRepo  repository.CommentRepository
	likeRepo     repository.LikeRepository
	refreshRepo  repository.RefreshTokenRepository
	tokenService service.TokenService
	hasher       service.PasswordHasher
	bucket       *blob.Bucket
	storage      service.ObjectStorage
	logger       *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	db := testutil.NewTestDB(t)

	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	baseURL, err := url.Parse("http://localhost:8080/files")
	require.NoError(t, err)
	bucket, err := fileblob.OpenBucket(t.TempDir(), &fileblob.Options{
		URLSigner: fileblob.NewURLSignerHMAC(baseURL, []byte("signing-secret")),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bucket.Close() })

	return &testEnv{
		cfg:          cfg,
		db:           db,
		txManager:    postgres.NewTransactionManager(db),
		userRepo:     postgres.NewUserRepository(db),
		postRepo:     postgres.NewPostRepository(db),
		countRepo:    postgres.NewPostCountRepository(db),
		commentRepo:  postgres.NewCommentRepository(db),
		likeRepo:     postgres.NewLikeRepository(db),
		refreshRepo:  postgres.NewRefreshTokenRepository(db),
		tokenService: tokenService,
		hasher:       auth.NewBcryptHasher(cfg),
		bucket:       bucket,
		storage:      storage.NewObjectStorage(bucket, cfg),
		logger:       newDiscardLogger(),
	}
}

// upload stores an object as if a client had used a presigned URL.
func (env *testEnv) upload(t *testing.T, key string) {
	t.Helper()

	require.NoError(t, env.bucket.WriteAll(context.Background(), key, []byte("image-bytes"), nil))
}

func (env *testEnv) objectExists(t *testing.T, key string) bool {
	t.Helper()

	exists, err := env.bucket.Exists(context.Background(), key)
	require.NoError(t, err)

	return exists
}

func (env *testEnv) credentialService() usecase.CredentialUsecase {
	return NewCredentialService(CredentialServiceParams{
		UserRepo: env.userRepo,
		Hasher:   env.hasher,
		Logger:   env.logger,
	})
}

func (env *testEnv) refreshTokenService() usecase.RefreshTokenUsecase {
	return NewRefreshTokenService(RefreshTokenServiceParams{
		Repo:         env.refreshRepo,
		TokenService: env.tokenService,
		Logger:       env.logger,
	})
}

func (env *testEnv) authService() usecase.AuthUsecase {
	return NewAuthService(AuthServiceParams{
		Credentials:  env.credentialService(),
		Ledger:       env.refreshTokenService(),
		TokenService: env.tokenService,
		Logger:       env.logger,
	})
}

func (env *testEnv) userService() usecase.UserUsecase {
	return NewUserService(UserServiceParams{
		TxManager:        env.txManager,
		UserRepo:         env.userRepo,
		RefreshTokenRepo: env.refreshRepo,
		Hasher:           env.hasher,
		Storage:          env.storage,
		Logger:           env.logger,
	})
}

func (env *testEnv) postService() usecase.PostUsecase {
	return env.postServiceWithStorage(env.storage)
}

func (env *testEnv) postServiceWithStorage(objects service.ObjectStorage) usecase.PostUsecase {
	return NewPostService(PostServiceParams{
		TxManager:     env.txManager,
		PostRepo:      env.postRepo,
		PostCountRepo: env.countRepo,
		Storage:       objects,
		Logger:        env.logger,
	})
}

func (env *testEnv) commentService() usecase.CommentUsecase {
	return NewCommentService(CommentServiceParams{
		TxManager:   env.txManager,
		PostRepo:    env.postRepo,
		CommentRepo: env.commentRepo,
		Logger:      env.logger,
	})
}

func (env *testEnv) likeService() usecase.LikeUsecase {
	return NewLikeService(LikeServiceParams{
		TxManager: env.txManager,
		LikeRepo:  env.likeRepo,
		Logger:    env.logger,
	})
}

// mockObjectStorage is a testify mock of service.ObjectStorage.
type mockObjectStorage struct {
	mock.Mock
}

func (m *mockObjectStorage) PresignUpload(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)

	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockObjectStorage) PresignDownload(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)

	return args.String(0), args.Error(1)
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)

	return args.Bool(0), args.Error(1)
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockObjectStorage) URLForKey(key string) string {
	return m.Called(key).String(0)
}

func (m *mockObjectStorage) KeyFromURL(url string) (string, bool) {
	args := m.Called(url)

	return args.String(0), args.Bool(1)
}
