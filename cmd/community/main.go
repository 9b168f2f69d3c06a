package main

import (
	"context"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"community/config"
	"community/internal/delivery"
	"community/internal/delivery/api"
	apimiddleware "community/internal/delivery/api/middleware"
	"community/internal/delivery/api/router/handler"
	"community/internal/delivery/worker"
	"community/internal/domain/repository"
	"community/internal/infra/auth"
	logs "community/internal/infra/log"
	"community/internal/infra/persistence/postgres"
	"community/internal/infra/redis"
	"community/internal/infra/storage"
	"community/internal/usecase/impl"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		redis.New,
		storage.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
			postgres.NewUserRepository,
			postgres.NewPostRepository,
			postgres.NewPostCountRepository,
			postgres.NewCommentRepository,
			postgres.NewLikeRepository,
			newRefreshTokenRepository,
			redis.NewSessionStore,
		),
	)
}

// newRefreshTokenRepository picks the refresh token backing named by auth.refreshStore.
func newRefreshTokenRepository(cfg *config.Config, db *gorm.DB, client *goredis.Client) repository.RefreshTokenRepository {
	if cfg.Auth.RefreshStore == config.RefreshStorePostgres {
		return postgres.NewRefreshTokenRepository(db)
	}

	return redis.NewRefreshTokenStore(client)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			storage.NewObjectStorage,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewCredentialService,
			impl.NewRefreshTokenService,
			impl.NewAuthService,
			impl.NewSessionAuthService,
			impl.NewUserService,
			impl.NewPostService,
			impl.NewCommentService,
			impl.NewLikeService,
			impl.NewImageService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			apimiddleware.NewAuthenticationStrategy,
			apimiddleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
			handler.NewPostHandler,
			handler.NewImageHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewSweeper,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
