package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dokter-remaja/internal/dialogue"
	"dokter-remaja/internal/session"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// HealthChecker is anything /readyz should ping.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server bundles together the dependencies required by HTTP handlers.
type Server struct {
	Sessions   *session.Manager
	Controller *dialogue.Controller
	Log        *logrus.Logger
	// Checks are pinged by /readyz, keyed by component name.
	Checks map[string]HealthChecker
}

// NewServer constructs a Server.  The session store is always checked for
// readiness.
func NewServer(sessions *session.Manager, controller *dialogue.Controller, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		Sessions:   sessions,
		Controller: controller,
		Log:        log,
		Checks:     map[string]HealthChecker{"store": sessions.Store},
	}
}

// Router builds the gin engine.  origin is the allowed CORS origin; "*"
// allows any.
func (s *Server) Router(origin string) *gin.Engine {
	router := gin.New()
	router.Use(
		requestLogger(s.Log),
		gin.Recovery(),
		limitBodySize(maxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins: []string{origin},
			AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", s.handleReady)

	api := router.Group("/api/sessions")
	api.POST("", s.handleCreateSession)
	api.GET("/:id", s.handleGetSession)
	api.DELETE("/:id", s.handleEndSession)
	api.POST("/:id/biography", s.handleSubmitBiography)
	api.POST("/:id/messages", s.handlePostMessage)

	return router
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := gin.H{"status": "ok"}, http.StatusOK
	for name, check := range s.Checks {
		if err := check.Ping(ctx); err != nil {
			status[name] = "unhealthy: " + err.Error()
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	c.JSON(code, status)
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Debug("request")
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
