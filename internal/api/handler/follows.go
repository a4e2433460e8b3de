package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillhub/quill/internal/api/middleware"
	"github.com/quillhub/quill/internal/db"
)

// FollowFeed lists posts authored by anyone the current actor follows
func (h *Handler) FollowFeed(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	posts, page, err := h.listPage(c, db.PostFilter{FollowedBy: actor.ID})
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      posts,
		"pagination": page,
	})
}

// Follow creates a follow edge from the actor to the named author.
// Following yourself or someone you already follow is a silent no-op.
func (h *Handler) Follow(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	username := c.Param("username")

	author, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if author == nil {
		h.notFound(c)
		return
	}

	if err := h.follows.Create(c.Request.Context(), actor.ID, author.ID); err != nil &&
		!errors.Is(err, db.ErrSelfFollow) {
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+author.Username)
}

// Unfollow removes the follow edge if present; absent edges are a no-op
func (h *Handler) Unfollow(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	username := c.Param("username")

	author, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if author == nil {
		h.notFound(c)
		return
	}

	if err := h.follows.Delete(c.Request.Context(), actor.ID, author.ID); err != nil {
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+author.Username)
}
