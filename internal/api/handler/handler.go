// Package handler maps user-facing actions onto the access layer. Each
// handler authenticates when required, validates its form, performs the
// reads or writes, and answers with JSON or a redirect, mirroring the
// classic post/redirect/get flow.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quillhub/quill/internal/auth"
	"github.com/quillhub/quill/internal/db"
	"github.com/quillhub/quill/pkg/logging"
	"github.com/quillhub/quill/pkg/paginator"
)

// Handler carries the repositories and settings shared by all endpoints
type Handler struct {
	users    *db.UserRepository
	groups   *db.GroupRepository
	posts    *db.PostRepository
	comments *db.CommentRepository
	follows  *db.FollowRepository
	tokens   *auth.TokenManager
	pageSize int
	logger   *zap.Logger
}

// New creates a handler over a shared repository
func New(repo *db.Repository, tokens *auth.TokenManager, pageSize int) *Handler {
	return &Handler{
		users:    db.NewUserRepository(repo),
		groups:   db.NewGroupRepository(repo),
		posts:    db.NewPostRepository(repo),
		comments: db.NewCommentRepository(repo),
		follows:  db.NewFollowRepository(repo),
		tokens:   tokens,
		pageSize: pageSize,
		logger:   logging.WithComponent("api-handler"),
	}
}

// listPage runs a filtered post listing for the page requested in the
// query string and returns the rendered posts plus page metadata.
func (h *Handler) listPage(c *gin.Context, filter db.PostFilter) ([]postView, paginator.Page, error) {
	ctx := c.Request.Context()

	total, err := h.posts.Count(ctx, filter)
	if err != nil {
		return nil, paginator.Page{}, err
	}

	number, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	page := paginator.New(int(total), h.pageSize, number)

	posts, err := h.posts.List(ctx, filter, page.Offset(), page.Limit())
	if err != nil {
		return nil, paginator.Page{}, err
	}

	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		views = append(views, newPostView(post))
	}
	return views, page, nil
}

func (h *Handler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		h.notFound(c)
		return 0, false
	}
	return id, true
}

func (h *Handler) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.Error("handler failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
