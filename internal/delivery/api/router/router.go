// Package router registers the routes of the API server.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"community/config"
	"community/internal/delivery/api/middleware"
	"community/internal/delivery/api/router/handler"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	PostHandler    *handler.PostHandler
	ImageHandler   *handler.ImageHandler
	AuthMiddleware *middleware.AuthMiddleware
	Config         *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	postHandler    *handler.PostHandler
	imageHandler   *handler.ImageHandler
	authMiddleware *middleware.AuthMiddleware
	authMode       string
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		userHandler:    params.UserHandler,
		postHandler:    params.PostHandler,
		imageHandler:   params.ImageHandler,
		authMiddleware: params.AuthMiddleware,
		authMode:       params.Config.Auth.Mode,
	}
}

// RegisterRoutes sets up all the API routes. Login and logout are bound to the
// handlers of the configured auth mode; token reissue exists only in jwt mode.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	authenticate := r.authMiddleware.Authenticate

	authGroup := e.Group("/auth")
	{
		authGroup.POST("", r.authHandler.SignUp)
		switch r.authMode {
		case config.AuthModeSession:
			authGroup.POST("/login", r.authHandler.SessionLogin)
			authGroup.POST("/logout", r.authHandler.SessionLogout)
		default:
			authGroup.POST("/login", r.authHandler.Login)
			authGroup.POST("/logout", r.authHandler.Logout)
			authGroup.POST("/refresh-access-token", r.authHandler.Reissue)
		}
	}

	usersGroup := e.Group("/users")
	{
		usersGroup.POST("/email", r.userHandler.CheckEmail)
		usersGroup.POST("/password", r.userHandler.CheckPassword)

		usersGroup.GET("/me", r.userHandler.GetMe, authenticate)
		usersGroup.DELETE("/me", r.userHandler.Withdraw, authenticate)
		usersGroup.PATCH("/nickname", r.userHandler.ChangeNickname, authenticate)
		usersGroup.PATCH("/password", r.userHandler.ChangePassword, authenticate)
		usersGroup.PATCH("/profile-image", r.userHandler.UpdateProfileImage, authenticate)
		usersGroup.DELETE("/profile-image", r.userHandler.DeleteProfileImage, authenticate)
	}

	postsGroup := e.Group("/posts")
	{
		postsGroup.GET("", r.postHandler.List)
		postsGroup.GET("/:postId", r.postHandler.Get, r.authMiddleware.Optional)
		postsGroup.GET("/:postId/comments", r.postHandler.ListComments, r.authMiddleware.Optional)

		postsGroup.POST("", r.postHandler.Create, authenticate)
		postsGroup.PATCH("/:postId", r.postHandler.Modify, authenticate)
		postsGroup.DELETE("/:postId", r.postHandler.Delete, authenticate)

		postsGroup.POST("/:postId/comments", r.postHandler.WriteComment, authenticate)
		postsGroup.PATCH("/comments/:commentId", r.postHandler.ModifyComment, authenticate)
		postsGroup.DELETE("/comments/:commentId", r.postHandler.RemoveComment, authenticate)

		postsGroup.POST("/:postId/likes", r.postHandler.Like, authenticate)
		postsGroup.DELETE("/:postId/likes", r.postHandler.Unlike, authenticate)
	}

	imagesGroup := e.Group("/images")
	imagesGroup.Use(authenticate)
	{
		imagesGroup.GET("/upload-url", r.imageHandler.RequestUploadURLs)
	}
}
