package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/skein/apps/internal/convert"
	"github.com/tilsley/skein/pkg/api"
	"github.com/tilsley/skein/pkg/events"
)

// Convert handles POST /convert — normalizes the repository reference, runs
// the conversion pipeline, and streams one JSON event per line as chunks are
// produced.
//
// A malformed reference fails fast with 400 before any streaming. Once the
// stream has started, every failure is reported as a terminal error event on
// the channel itself; no error crosses the request boundary uncaught.
func (h *Handler) Convert(c *gin.Context) {
	var req api.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref, err := convert.ParseRef(req.URL)
	if err != nil {
		var invalid convert.InvalidReferenceError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)

	enc := events.NewEncoder(c.Writer)
	emit := func(ev events.Event) error {
		if err := enc.Encode(ev); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	h.log.Debug("conversion started", "repo", ref.String())
	if err := h.svc.Convert(c.Request.Context(), h.newSource(), ref, emit); err != nil {
		h.log.Error("conversion failed", "repo", ref.String(), "error", err)
		// A failed emit here means the consumer disconnected; nothing left to do.
		if encErr := enc.Encode(events.Errorf("%v", err)); encErr != nil {
			h.log.Warn("could not deliver terminal error event", "error", encErr)
			return
		}
		c.Writer.Flush()
		return
	}
	h.log.Debug("conversion complete", "repo", ref.String())
}
