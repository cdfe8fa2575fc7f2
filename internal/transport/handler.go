package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"lumina-face-analysis/internal/config"
	apperrors "lumina-face-analysis/internal/errors"
	"lumina-face-analysis/internal/logger"
	"lumina-face-analysis/internal/service"
	"lumina-face-analysis/internal/storage"
	"lumina-face-analysis/internal/workflow"
	"lumina-face-analysis/pkg/models"
	"lumina-face-analysis/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MetricsFunc returns the counters served on /metrics
type MetricsFunc func() map[string]interface{}

type handler struct {
	sessions service.SessionService
	metrics  MetricsFunc
	cfg      *config.Config
}

func NewHandler(sessions service.SessionService, metrics MetricsFunc, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	h := &handler{sessions: sessions, metrics: metrics, cfg: cfg}

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", h.getMetrics)

	s := r.Group("/sessions")
	s.POST("", h.createSession)
	s.GET("/:id", h.getSession)
	s.DELETE("/:id", h.deleteSession)
	s.POST("/:id/auth", h.authenticate)
	s.POST("/:id/image", h.selectImage)
	s.POST("/:id/reset", h.reset)

	return r
}

func (h *handler) createSession(c *gin.Context) {
	snap, err := h.sessions.CreateSession(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	logger.WithField("session_id", snap.SessionID).Info("Session created")
	c.JSON(http.StatusCreated, snap)
}

func (h *handler) getSession(c *gin.Context) {
	var wait time.Duration
	if raw := c.Query("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			respondError(c, apperrors.NewValidationError("wait must be a non-negative duration such as 10s", err), nil)
			return
		}
		wait = d
	}

	snap, err := h.sessions.AwaitSession(c.Request.Context(), c.Param("id"), wait)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handler) deleteSession(c *gin.Context) {
	if err := h.sessions.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) authenticate(c *gin.Context) {
	var req models.AuthRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("invalid request format", err), nil)
			return
		}
	}

	snap, err := h.sessions.Authenticate(c.Request.Context(), c.Param("id"), req.AccessCode)
	if err != nil {
		respondError(c, err, sessionOf(snap))
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handler) selectImage(c *gin.Context) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	id := c.Param("id")
	fields := logrus.Fields{
		"session_id": id,
		"ip":         c.ClientIP(),
	}

	var (
		snap workflow.Snapshot
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, ferr := storage.ReadMultipartImage(c.Request, "image", validation.MaxUploadBytes)
		if ferr != nil {
			msg := "invalid multipart body"
			if errors.Is(ferr, storage.ErrImagePartMissing) {
				msg = "multipart field \"image\" is required"
			}
			respondError(c, apperrors.NewValidationError(msg, ferr), nil)
			return
		}
		fields["source"] = "upload"
		fields["size"] = file.Size()
		snap, err = h.sessions.SelectUpload(ctx, id, file)
	} else {
		var req models.ImageSourceRequest
		if berr := c.ShouldBindJSON(&req); berr != nil {
			respondError(c, apperrors.NewValidationError("invalid request format", berr), nil)
			return
		}
		switch {
		case req.URL != "" && req.Blob == nil:
			fields["source"] = "url"
			fields["url"] = req.URL
			snap, err = h.sessions.SelectURL(ctx, id, req.URL)
		case req.Blob != nil && req.URL == "":
			fields["source"] = "blob"
			snap, err = h.sessions.SelectBlob(ctx, id, req.Blob.Container, req.Blob.Name)
		default:
			respondError(c, apperrors.NewValidationError("exactly one of url or blob is required", nil), nil)
			return
		}
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			err = apperrors.NewTimeoutError("image selection timed out", err)
		}
		respondError(c, err, sessionOf(snap))
		return
	}

	fields["processing_time_ms"] = time.Since(startTime).Milliseconds()
	fields["state"] = snap.State
	logger.WithFields(fields).Info("Image accepted for analysis")

	c.JSON(http.StatusAccepted, snap)
}

func (h *handler) reset(c *gin.Context) {
	snap, err := h.sessions.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, sessionOf(snap))
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handler) getMetrics(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, h.metrics())
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, c.Errors.Last().Err, nil)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// sessionOf returns nil for the zero snapshot of a missing session
func sessionOf(snap workflow.Snapshot) *workflow.Snapshot {
	if snap.SessionID == "" {
		return nil
	}
	return &snap
}

func respondError(c *gin.Context, err error, session *workflow.Snapshot) {
	code := determineStatusCode(err)
	message := "request processing failed"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	}
	if session != nil {
		resp.Session = session
	}
	c.AbortWithStatusJSON(code, resp)
}
