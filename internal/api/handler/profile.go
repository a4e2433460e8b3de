package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillhub/quill/internal/api/middleware"
	"github.com/quillhub/quill/internal/db"
)

// Profile shows an author's page: their posts plus whether the current
// actor already follows them. The flag is false for anonymous visitors
// and for a profile's own author.
func (h *Handler) Profile(c *gin.Context) {
	username := c.Param("username")
	ctx := c.Request.Context()

	author, err := h.users.GetByUsername(ctx, username)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if author == nil {
		h.notFound(c)
		return
	}

	posts, page, err := h.listPage(c, db.PostFilter{AuthorID: author.ID})
	if err != nil {
		h.serverError(c, err)
		return
	}

	following := false
	if actor := middleware.CurrentUser(c); actor != nil && actor.ID != author.ID {
		following, err = h.follows.Exists(ctx, actor.ID, author.ID)
		if err != nil {
			h.serverError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"author":     newUserView(author),
		"post_count": page.TotalItems,
		"following":  following,
		"posts":      posts,
		"pagination": page,
	})
}
