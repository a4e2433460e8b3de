package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quillhub/quill/internal/api/middleware"
	"github.com/quillhub/quill/internal/forms"
	"github.com/quillhub/quill/internal/models"
)

// AddComment persists a comment under a post and redirects back to the
// post detail view. Invalid submissions are dropped without surfacing the
// validation errors; the redirect happens either way.
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	post, err := h.posts.GetByID(ctx, id)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if post == nil {
		h.notFound(c)
		return
	}

	var form forms.CommentForm
	_ = c.ShouldBind(&form)

	if errs := forms.Validate(&form); len(errs) == 0 {
		actor := middleware.CurrentUser(c)
		comment := &models.Comment{
			AuthorID: actor.ID,
			PostID:   post.ID,
			Text:     form.Text,
		}
		if err := h.comments.Create(ctx, comment); err != nil {
			h.serverError(c, err)
			return
		}
	} else {
		h.logger.Debug("dropped invalid comment submission",
			zap.Int64("post_id", post.ID))
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}
