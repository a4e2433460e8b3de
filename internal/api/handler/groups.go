package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillhub/quill/internal/db"
)

// GroupDetail resolves a group by slug and lists its posts
func (h *Handler) GroupDetail(c *gin.Context) {
	slug := c.Param("slug")

	group, err := h.groups.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if group == nil {
		h.notFound(c)
		return
	}

	posts, page, err := h.listPage(c, db.PostFilter{GroupID: group.ID})
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group":      newGroupView(group),
		"posts":      posts,
		"pagination": page,
	})
}
