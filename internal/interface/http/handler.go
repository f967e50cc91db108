package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaabil/faqrag/internal/domain/rag"
	apperrors "github.com/kaabil/faqrag/pkg/errors"
)

// Reloader lets the admin endpoint swap in a freshly built index generation.
type Reloader interface {
	Reload() error
}

// Handler wires the HTTP transport to the ask pipeline.
type Handler struct {
	ragSvc   rag.Service
	reloader Reloader
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(ragSvc rag.Service, reloader Reloader, logger *slog.Logger) *Handler {
	return &Handler{
		ragSvc:   ragSvc,
		reloader: reloader,
		logger:   logger.With("component", "http.handler"),
	}
}

// Ask answers a support question from indexed evidence.
func (h *Handler) Ask(c *gin.Context) {
	var req rag.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	meta := rag.RequestMeta{
		SessionID: c.GetHeader("X-Session-Id"),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	resp, err := h.ragSvc.Ask(c.Request.Context(), req, meta)
	if err != nil {
		abortWithError(c, askError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Reload loads the latest persisted index generation.
func (h *Handler) Reload(c *gin.Context) {
	if err := h.reloader.Reload(); err != nil {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, apperrors.CodeOf(err), errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// askError maps pipeline failures to transport statuses. Retrieval failures
// surface as distinguishable server errors; they are never rendered as a
// no-evidence answer.
func askError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "ask_failed"
	switch {
	case apperrors.IsCode(err, apperrors.CodeInvalidInput):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, apperrors.CodeIndexNotLoaded):
		status = http.StatusServiceUnavailable
		code = apperrors.CodeIndexNotLoaded
	case apperrors.IsCode(err, apperrors.CodeDimensionMismatch):
		status = http.StatusInternalServerError
		code = apperrors.CodeDimensionMismatch
	case apperrors.IsCode(err, apperrors.CodeEmbeddingUnavailable):
		status = http.StatusBadGateway
		code = apperrors.CodeEmbeddingUnavailable
	case apperrors.IsCode(err, apperrors.CodeLLMError):
		status = http.StatusBadGateway
		code = apperrors.CodeLLMError
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
