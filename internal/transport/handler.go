package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"go-motion-inspector/internal/config"
	apperrors "go-motion-inspector/internal/errors"
	"go-motion-inspector/internal/logger"
	"go-motion-inspector/internal/service"
	"go-motion-inspector/pkg/models"
)

// MonitorStatus reports the camera loop, nil when no camera is configured
type MonitorStatus interface {
	Status() models.MonitorStatus
}

// Dependencies are the collaborators served over HTTP
type Dependencies struct {
	Service  service.MotionService
	Monitor  MonitorStatus
	Hub      *Hub
	Gatherer prometheus.Gatherer
}

func NewHandler(deps Dependencies, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck(deps))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	r.POST("/snapshots", createSnapshot(deps.Service, cfg))
	r.POST("/snapshots/batch", createSnapshots(deps.Service, cfg))
	r.GET("/snapshots/:id/features", getFeatures(deps.Service))
	r.GET("/snapshots/:id/image", getImage(deps.Service))
	r.DELETE("/snapshots/:id", deleteSnapshot(deps.Service))
	r.POST("/compare", compareSnapshots(deps.Service, cfg))

	r.GET("/tolerance", getTolerance(deps.Service))
	r.PUT("/tolerance", putTolerance(deps.Service))
	r.PUT("/tolerance/sensitivity", putSensitivity(deps.Service))

	r.GET("/historic", listHistoric(deps.Service))
	r.GET("/monitor", monitorStatus(deps.Monitor))
	if deps.Hub != nil {
		r.GET("/events", deps.Hub.serveEvents)
	}

	return r
}

func createSnapshot(s service.MotionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		// Log request start
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing snapshot request")

		encoded, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(c, http.StatusRequestEntityTooLarge, "frame too large", err)
				return
			}
			respondError(c, http.StatusBadRequest, "failed to read frame", err)
			return
		}

		resp, err := s.CreateSnapshot(ctx, encoded)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to create snapshot", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"snapshot_id":        resp.ID,
			"encoded_size":       resp.EncodedSize,
			"blocks":             resp.Cols * resp.Rows,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Snapshot created")

		c.JSON(http.StatusCreated, resp)
	}
}

// maxBatchFrames bounds the number of frames in one batch upload
const maxBatchFrames = 32

func createSnapshots(s service.MotionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		form, err := c.MultipartForm()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(c, http.StatusRequestEntityTooLarge, "batch too large", err)
				return
			}
			respondError(c, http.StatusBadRequest, "expected a multipart form", err)
			return
		}

		files := form.File["frames"]
		if len(files) == 0 {
			respondError(c, http.StatusBadRequest, "no frames uploaded", nil)
			return
		}
		if len(files) > maxBatchFrames {
			respondError(c, http.StatusBadRequest,
				fmt.Sprintf("at most %d frames per batch", maxBatchFrames), nil)
			return
		}

		batch := make([][]byte, 0, len(files))
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				respondError(c, http.StatusBadRequest, "failed to read frame", err)
				return
			}
			encoded, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				respondError(c, http.StatusBadRequest, "failed to read frame", err)
				return
			}
			batch = append(batch, encoded)
		}

		resp, err := s.CreateSnapshots(ctx, batch)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to create snapshots", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"frames":             len(batch),
			"stored":             len(resp.Snapshots),
			"failed":             len(resp.Errors),
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Snapshot batch processed")

		if len(resp.Snapshots) == 0 {
			c.JSON(http.StatusUnprocessableEntity, resp)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

func getImage(s service.MotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		image, err := s.GetImage(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to get image", err)
			return
		}
		c.Data(http.StatusOK, "image/jpeg", image)
	}
}

func getFeatures(s service.MotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		features, err := s.GetFeatures(c.Request.Context(), c.Param("id"), c.Query("previous"))
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to get features", err)
			return
		}
		c.JSON(http.StatusOK, features)
	}
}

func deleteSnapshot(s service.MotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.DeleteSnapshot(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, determineStatusCode(err), "failed to delete snapshot", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func compareSnapshots(s service.MotionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.CompareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		report, err := s.Compare(ctx, req)
		if err != nil {
			respondError(c, determineStatusCode(err), "comparison failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"current_id":         req.CurrentID,
			"previous_id":        req.PreviousID,
			"strategy":           req.Strategy,
			"count":              report.Diff.Count,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Comparison completed")

		c.JSON(http.StatusOK, report)
	}
}

func getTolerance(s service.MotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Tolerance())
	}
}

func putTolerance(s service.MotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ToleranceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		resp, err := s.Configure(c.Request.Context(), req)
		if err != nil {
			respondError(c, determineStatusCode(err), "invalid tolerance", err)
			return
		}
		logger.WithField("tolerance", resp).Info("Tolerance configured")
		c.JSON(http.StatusOK, resp)
	}
}

func putSensitivity(s service.MotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SensitivityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		resp, err := s.ConfigureSensitivity(c.Request.Context(), req)
		if err != nil {
			respondError(c, determineStatusCode(err), "invalid sensitivity", err)
			return
		}
		logger.WithField("sensitivity", req.Sensitivity).Info("Sensitivity configured")
		c.JSON(http.StatusOK, resp)
	}
}

func listHistoric(s service.MotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				respondError(c, http.StatusBadRequest, "invalid limit",
					apperrors.NewValidationError("limit must be a positive integer", err))
				return
			}
			limit = n
		}
		resp, err := s.Historic(c.Request.Context(), limit)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to list historic", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func monitorStatus(m MonitorStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.JSON(http.StatusOK, models.MonitorStatus{})
			return
		}
		c.JSON(http.StatusOK, m.Status())
	}
}

func healthCheck(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "available",
			"version": "1.0.0",
			"time":    time.Now().UTC().Format(time.RFC3339),
		}
		if deps.Hub != nil {
			body["event_clients"] = deps.Hub.Clients()
		}
		c.JSON(http.StatusOK, body)
	}
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

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
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

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}
