package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quillhub/quill/internal/auth"
	"github.com/quillhub/quill/internal/db"
	"github.com/quillhub/quill/internal/models"
	"github.com/quillhub/quill/pkg/logging"
	"github.com/quillhub/quill/pkg/telemetry"
)

// LoginPath is where unauthenticated actors are redirected.
const LoginPath = "/auth/login"

const userKey = "currentUser"

// CurrentUser returns the authenticated user for this request, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// RequestID tags every request with a unique id for log correlation
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Tracing opens a span per request
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := telemetry.StartSpan(c.Request.Context(), c.Request.Method+" "+c.FullPath())
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authenticate resolves a bearer token to a user and stores it in the
// request context. Invalid or absent tokens leave the request anonymous;
// RequireAuth decides what to do about that.
func Authenticate(tm *auth.TokenManager, users *db.UserRepository) gin.HandlerFunc {
	logger := logging.WithComponent("auth-middleware")
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.Next()
			return
		}

		claims, err := tm.Parse(token)
		if err != nil {
			logger.Debug("rejected token", zap.Error(err))
			c.Next()
			return
		}

		// The token may outlive the account
		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.Error("failed to load user for token", zap.Error(err))
			c.Next()
			return
		}
		if user != nil {
			c.Set(userKey, user)
		}
		c.Next()
	}
}

// RequireAuth redirects anonymous requests to the login flow
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			next := url.QueryEscape(c.Request.URL.Path)
			c.Redirect(http.StatusFound, LoginPath+"?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}
