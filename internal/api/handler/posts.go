package handler

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillhub/quill/internal/api/middleware"
	"github.com/quillhub/quill/internal/db"
	"github.com/quillhub/quill/internal/forms"
	"github.com/quillhub/quill/internal/models"
)

// Index lists all posts, newest first. The route wraps this handler in the
// page cache, so the listing may trail writes by the cache TTL.
func (h *Handler) Index(c *gin.Context) {
	posts, page, err := h.listPage(c, db.PostFilter{})
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":      posts,
		"pagination": page,
	})
}

// PostDetail shows one post with its comments and an empty comment form
func (h *Handler) PostDetail(c *gin.Context) {
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

	authorPosts, err := h.posts.Count(ctx, db.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		h.serverError(c, err)
		return
	}

	comments, err := h.comments.ListByPost(ctx, post.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	commentViews := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		commentViews = append(commentViews, newCommentView(comment))
	}

	c.JSON(http.StatusOK, gin.H{
		"post":              newPostView(post),
		"author_post_count": authorPosts,
		"comments":          commentViews,
		"form":              commentFormDescriptor(),
	})
}

// PostCreateForm renders the empty post form
func (h *Handler) PostCreateForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"form":    postFormDescriptor(),
		"is_edit": false,
	})
}

// PostCreate validates the submitted form and persists a new post with
// the current actor as author, then redirects to the actor's profile.
func (h *Handler) PostCreate(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	var form forms.PostForm
	_ = c.ShouldBind(&form)

	errs := forms.Validate(&form)
	group, err := h.resolveGroup(c, &form, errs)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if len(errs) > 0 {
		h.renderFormErrors(c, form, errs, false)
		return
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: actor.ID,
		Image:    form.Image,
	}
	if group != nil {
		post.GroupID = sql.NullInt64{Int64: group.ID, Valid: true}
	}
	if err := h.posts.Create(c.Request.Context(), post); err != nil {
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+actor.Username)
}

// PostEditForm renders the form pre-filled from the existing post.
// Actors other than the author are bounced to the post detail view.
func (h *Handler) PostEditForm(c *gin.Context) {
	post, ok := h.editablePost(c)
	if !ok {
		return
	}

	values := gin.H{"text": post.Text, "image": post.Image}
	if post.GroupID.Valid {
		values["group"] = post.GroupID.Int64
	}
	c.JSON(http.StatusOK, gin.H{
		"form":    postFormDescriptor(),
		"values":  values,
		"is_edit": true,
	})
}

// PostEdit mutates an existing post's text, group, and image in place.
// Author and pub_date are never touched.
func (h *Handler) PostEdit(c *gin.Context) {
	post, ok := h.editablePost(c)
	if !ok {
		return
	}

	var form forms.PostForm
	_ = c.ShouldBind(&form)

	errs := forms.Validate(&form)
	group, err := h.resolveGroup(c, &form, errs)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if len(errs) > 0 {
		h.renderFormErrors(c, form, errs, true)
		return
	}

	post.Text = form.Text
	post.Image = form.Image
	post.GroupID = sql.NullInt64{}
	if group != nil {
		post.GroupID = sql.NullInt64{Int64: group.ID, Valid: true}
	}
	if err := h.posts.Update(c.Request.Context(), post); err != nil {
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
}

// editablePost loads the post from the path and enforces the author-only
// edit rule: a mismatched actor is silently redirected, never errored.
func (h *Handler) editablePost(c *gin.Context) (*models.Post, bool) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return nil, false
	}

	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serverError(c, err)
		return nil, false
	}
	if post == nil {
		h.notFound(c)
		return nil, false
	}

	actor := middleware.CurrentUser(c)
	if actor == nil || actor.ID != post.AuthorID {
		c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", post.ID))
		c.Abort()
		return nil, false
	}
	return post, true
}

// resolveGroup looks up the optional group field, recording a field error
// when the referenced group does not exist.
func (h *Handler) resolveGroup(c *gin.Context, form *forms.PostForm, errs map[string]string) (*models.Group, error) {
	if form.GroupID == 0 {
		return nil, nil
	}
	group, err := h.groups.GetByID(c.Request.Context(), form.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		errs["group"] = "choose a valid group"
	}
	return group, nil
}

func (h *Handler) renderFormErrors(c *gin.Context, form forms.PostForm, errs map[string]string, isEdit bool) {
	values := gin.H{"text": form.Text, "image": form.Image}
	if form.GroupID != 0 {
		values["group"] = form.GroupID
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"form":    postFormDescriptor(),
		"values":  values,
		"errors":  errs,
		"is_edit": isEdit,
	})
}
