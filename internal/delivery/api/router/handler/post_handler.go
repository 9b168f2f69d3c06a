package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"community/internal/delivery/api/middleware"
	"community/internal/delivery/api/response"
	"community/internal/errors"
	"community/internal/usecase"
)

// PostHandlerParams holds dependencies for PostHandler, injected by Fx.
type PostHandlerParams struct {
	fx.In

	PostUC    usecase.PostUsecase
	CommentUC usecase.CommentUsecase
	LikeUC    usecase.LikeUsecase
	Logger    *slog.Logger
}

// PostHandler serves posts together with their comments and likes.
type PostHandler struct {
	postUC    usecase.PostUsecase
	commentUC usecase.CommentUsecase
	likeUC    usecase.LikeUsecase
	logger    *slog.Logger
}

func NewPostHandler(params PostHandlerParams) *PostHandler {
	return &PostHandler{
		postUC:    params.PostUC,
		commentUC: params.CommentUC,
		likeUC:    params.LikeUC,
		logger:    params.Logger,
	}
}

type createPostRequest struct {
	Title     string   `json:"title" validate:"required,max=30"`
	Content   string   `json:"content" validate:"required"`
	ImageKeys []string `json:"imageKeys" validate:"max=10,dive,imagekey"`
}

type modifyPostRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=30"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

type postIDResponse struct {
	PostID int64 `json:"postId"`
}

type commentIDResponse struct {
	CommentID int64 `json:"commentId"`
}

type likeResponse struct {
	PostID int64 `json:"postId"`
	Liked  bool  `json:"liked"`
}

// List serves the newest-first post listing.
func (h *PostHandler) List(c echo.Context) error {
	cursor, size, err := pageQuery(c)
	if err != nil {
		return errors.WithStack(err)
	}

	page, err := h.postUC.List(c.Request().Context(), cursor, size)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toPageResponse(page))
}

// Get serves a post detail and counts the view. Signed-in viewers get isMine and isLiked.
func (h *PostHandler) Get(c echo.Context) error {
	postID, err := pathID(c, "postId")
	if err != nil {
		return errors.WithStack(err)
	}

	detail, err := h.postUC.Get(c.Request().Context(), postID, middleware.ViewerID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, detail)
}

func (h *PostHandler) Create(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	var req createPostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	postID, err := h.postUC.Create(c.Request().Context(), userID, usecase.CreatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		ImageKeys: req.ImageKeys,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, postIDResponse{PostID: postID})
}

func (h *PostHandler) Modify(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	postID, err := pathID(c, "postId")
	if err != nil {
		return errors.WithStack(err)
	}

	var req modifyPostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	err = h.postUC.Modify(c.Request().Context(), userID, postID, usecase.ModifyPostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, postIDResponse{PostID: postID})
}

func (h *PostHandler) Delete(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	postID, err := pathID(c, "postId")
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.postUC.Delete(c.Request().Context(), userID, postID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, postIDResponse{PostID: postID})
}

// ListComments serves the newest-first comments of a post.
func (h *PostHandler) ListComments(c echo.Context) error {
	postID, err := pathID(c, "postId")
	if err != nil {
		return errors.WithStack(err)
	}

	cursor, size, err := pageQuery(c)
	if err != nil {
		return errors.WithStack(err)
	}

	page, err := h.commentUC.List(c.Request().Context(), postID, cursor, size, middleware.ViewerID(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toPageResponse(page))
}

func (h *PostHandler) WriteComment(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	postID, err := pathID(c, "postId")
	if err != nil {
		return errors.WithStack(err)
	}

	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	commentID, err := h.commentUC.Write(c.Request().Context(), userID, postID, req.Content)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, commentIDResponse{CommentID: commentID})
}

func (h *PostHandler) ModifyComment(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	commentID, err := pathID(c, "commentId")
	if err != nil {
		return errors.WithStack(err)
	}

	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.commentUC.Modify(c.Request().Context(), userID, commentID, req.Content); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, commentIDResponse{CommentID: commentID})
}

func (h *PostHandler) RemoveComment(c echo.Context) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	commentID, err := pathID(c, "commentId")
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.commentUC.Remove(c.Request().Context(), userID, commentID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, commentIDResponse{CommentID: commentID})
}

func (h *PostHandler) Like(c echo.Context) error {
	return h.toggleLike(c, true)
}

func (h *PostHandler) Unlike(c echo.Context) error {
	return h.toggleLike(c, false)
}

func (h *PostHandler) toggleLike(c echo.Context, like bool) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	postID, err := pathID(c, "postId")
	if err != nil {
		return errors.WithStack(err)
	}

	if like {
		err = h.likeUC.Like(c.Request().Context(), userID, postID)
	} else {
		err = h.likeUC.Unlike(c.Request().Context(), userID, postID)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, likeResponse{PostID: postID, Liked: like})
}
