package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillhub/quill/internal/auth"
	"github.com/quillhub/quill/internal/forms"
	"github.com/quillhub/quill/internal/models"
)

func authFormDescriptor(signup bool) map[string]formField {
	fields := map[string]formField{
		"username": {Label: "Username", Required: true},
		"password": {Label: "Password", Required: true},
	}
	if signup {
		fields["email"] = formField{Label: "Email", HelpText: "Optional"}
		fields["password"] = formField{Label: "Password", HelpText: "At least 8 characters", Required: true}
	}
	return fields
}

// LoginForm renders the login form; RequireAuth redirects here
func (h *Handler) LoginForm(c *gin.Context) {
	next := c.Query("next")
	c.JSON(http.StatusOK, gin.H{
		"form": authFormDescriptor(false),
		"next": next,
	})
}

// Signup registers a new user and hands back a session token
func (h *Handler) Signup(c *gin.Context) {
	var form forms.SignupForm
	_ = c.ShouldBind(&form)

	errs := forms.Validate(&form)
	ctx := c.Request.Context()

	if len(errs) == 0 {
		existing, err := h.users.GetByUsername(ctx, form.Username)
		if err != nil {
			h.serverError(c, err)
			return
		}
		if existing != nil {
			errs["username"] = "this username is already taken"
		}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"form":   authFormDescriptor(true),
			"errors": errs,
		})
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		h.serverError(c, err)
		return
	}
	user := &models.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
	}
	if err := h.users.Create(ctx, user); err != nil {
		h.serverError(c, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  newUserView(user),
	})
}

// Login verifies credentials and hands back a session token
func (h *Handler) Login(c *gin.Context) {
	var form forms.LoginForm
	_ = c.ShouldBind(&form)

	if errs := forms.Validate(&form); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"form":   authFormDescriptor(false),
			"errors": errs,
		})
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), form.Username)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, form.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  newUserView(user),
	})
}
