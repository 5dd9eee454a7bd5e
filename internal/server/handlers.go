// Package server provides HTTP handlers and server setup for the minify service.
package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"pressmin/internal/assetcache"
	"pressmin/internal/minify"
)

// Handler holds the HTTP handlers
type Handler struct {
	cache  *assetcache.AssetCache
	logger *slog.Logger
}

// NewHandler creates a new handler backed by the given cache
func NewHandler(cache *assetcache.AssetCache, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cache:  cache,
		logger: logger,
	}
}

// MinifyRequest is the body of POST /v1/minify
type MinifyRequest struct {
	Handle   string `json:"handle"`
	Language string `json:"language"`
	Content  string `json:"content"`
	// Mtime is the source file's modification time in unix seconds. It is
	// part of the cache identity; callers that omit it get content-only
	// addressing.
	Mtime int64 `json:"mtime"`
}

// MinifyResponse is the body of a successful minify call
type MinifyResponse struct {
	Output     string `json:"output"`
	CacheHit   bool   `json:"cache_hit"`
	Fallback   bool   `json:"fallback"`
	BytesSaved int    `json:"bytes_saved"`
}

// Minify handles POST /v1/minify
func (h *Handler) Minify(c echo.Context) error {
	var req MinifyRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
	}
	if req.Handle == "" {
		return errorJSON(c, http.StatusBadRequest, "invalid_request", "handle is required")
	}
	lang := minify.Language(req.Language)
	if !lang.Valid() {
		return errorJSON(c, http.StatusBadRequest, "invalid_request", "language must be css or js")
	}

	id := assetcache.NewIdentity(req.Handle, []byte(req.Content), req.Mtime)
	out := h.cache.PutIfAbsent(c.Request().Context(), id, req.Content, lang)

	saved := len(req.Content) - len(out.Bytes)
	if saved < 0 {
		saved = 0
	}

	cacheState := "miss"
	if out.CacheHit {
		cacheState = "hit"
	}
	c.Response().Header().Set("X-Pressmin-Cache", cacheState)
	if out.Fallback {
		c.Response().Header().Set("X-Pressmin-Fallback", "true")
	}

	return c.JSON(http.StatusOK, MinifyResponse{
		Output:     string(out.Bytes),
		CacheHit:   out.CacheHit,
		Fallback:   out.Fallback,
		BytesSaved: saved,
	})
}

// CacheStats handles GET /v1/cache/stats
func (h *Handler) CacheStats(c echo.Context) error {
	stats, err := h.cache.Stats(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to read cache stats", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "internal_error", "failed to read cache stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// ClearCache handles DELETE /v1/cache
func (h *Handler) ClearCache(c echo.Context) error {
	if err := h.cache.Clear(c.Request().Context()); err != nil {
		h.logger.Error("failed to clear cache", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "internal_error", "failed to clear cache")
	}
	return c.NoContent(http.StatusNoContent)
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func errorJSON(c echo.Context, status int, errType, message string) error {
	return c.JSON(status, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    errType,
			"message": message,
		},
	})
}
