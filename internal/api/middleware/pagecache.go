package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quillhub/quill/internal/cache"
	"github.com/quillhub/quill/pkg/logging"
)

// bodyRecorder tees the response body so it can be cached after the
// handler has written it.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves GET responses from the store for up to ttl, keyed by a
// single fixed key. The key is deliberately not per-user or per-query:
// every reader shares one cached page, and writes do not invalidate it, so
// the page may run stale for up to one ttl window.
func CachePage(store cache.Store, ttl time.Duration, key string) gin.HandlerFunc {
	logger := logging.WithComponent("page-cache")
	return func(c *gin.Context) {
		if store == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		if body, err := store.Get(ctx, key); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(body))
			c.Abort()
			return
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		if recorder.Status() == http.StatusOK {
			if err := store.Set(ctx, key, recorder.body.String(), ttl); err != nil {
				logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
}
