// Package handler translates HTTP requests into conversions and streams the
// resulting progress events back as newline-delimited JSON.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/skein/apps/internal/convert"
)

// Handler translates HTTP requests into calls on the convert.Service.
type Handler struct {
	svc       *convert.Service
	newSource func() convert.Source
	log       *slog.Logger
}

// RegisterRoutes mounts the skein API onto the given Gin engine. newSource
// is called once per conversion request so each request owns its own
// acquisition state.
func RegisterRoutes(r *gin.Engine, svc *convert.Service, newSource func() convert.Source, log *slog.Logger) {
	h := &Handler{svc: svc, newSource: newSource, log: log}

	r.POST("/convert", h.Convert)
	r.GET("/healthz", h.Health)
}

// Health handles GET /healthz — liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
