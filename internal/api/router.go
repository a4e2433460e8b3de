package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/quillhub/quill/internal/api/handler"
	"github.com/quillhub/quill/internal/api/middleware"
	"github.com/quillhub/quill/internal/auth"
	"github.com/quillhub/quill/internal/cache"
	"github.com/quillhub/quill/internal/db"
	"github.com/quillhub/quill/pkg/config"
	"github.com/quillhub/quill/pkg/logging"
)

// indexCacheKey is the single fixed key under which the index page is
// cached for every reader.
const indexCacheKey = "pages:index"

// Router wires middleware and handlers onto a gin engine
type Router struct {
	handler *handler.Handler
	users   *db.UserRepository
	tokens  *auth.TokenManager
	store   cache.Store
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRouter creates a new API router over an open database connection
func NewRouter(gdb *gorm.DB, store cache.Store, cfg *config.Config) *Router {
	repo := db.NewRepository(gdb)
	tokens := auth.NewTokenManager(&cfg.Auth)

	return &Router{
		handler: handler.New(repo, tokens, cfg.App.PageSize),
		users:   db.NewUserRepository(repo),
		tokens:  tokens,
		store:   store,
		cfg:     cfg,
		logger:  logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// Tokens returns the router's token manager
func (r *Router) Tokens() *auth.TokenManager {
	return r.tokens
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Authenticate(r.tokens, r.users),
	)

	h := r.handler

	// Health check endpoint
	engine.GET("/health", r.healthHandler)

	// Public pages
	engine.GET("/",
		middleware.CachePage(r.store, r.cfg.App.IndexCacheTTL, indexCacheKey),
		h.Index)
	engine.GET("/group/:slug", h.GroupDetail)
	engine.GET("/profile/:username", h.Profile)
	engine.GET("/posts/:id", h.PostDetail)

	// Login flow
	engine.GET("/auth/login", h.LoginForm)
	engine.POST("/auth/login", h.Login)
	engine.POST("/auth/signup", h.Signup)

	// Authenticated actions
	authed := engine.Group("", middleware.RequireAuth())
	authed.GET("/create", h.PostCreateForm)
	authed.POST("/create", h.PostCreate)
	authed.GET("/posts/:id/edit", h.PostEditForm)
	authed.POST("/posts/:id/edit", h.PostEdit)
	authed.POST("/posts/:id/comment", h.AddComment)
	authed.GET("/follow", h.FollowFeed)
	authed.POST("/profile/:username/follow", h.Follow)
	authed.POST("/profile/:username/unfollow", h.Unfollow)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "quill-api",
	})
}
