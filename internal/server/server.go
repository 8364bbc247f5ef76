// Package server exposes the classifier over HTTP.
//
// Routes:
//
//	GET  /               health text
//	POST /api/categorize multipart "image" file plus "apiKeys" JSON
//	GET  /metrics        Prometheus metrics
package server

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"fjacquet/stock-categorizer/internal/logging"
	"fjacquet/stock-categorizer/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthText is the body of GET /.
const HealthText = "Adobe Stock Categorizer API is running"

// Classifier classifies one stored image.
type Classifier interface {
	ClassifyImage(ctx context.Context, imagePath string, creds []models.Credential) (models.ClassificationResult, error)
}

// Options configures the server.
type Options struct {
	MaxUploadBytes int64
	// UploadDir holds temporary uploads; empty selects os.TempDir().
	UploadDir string
	// Extensions lists accepted upload extensions.
	Extensions []string
}

// Server serves the upload API.
type Server struct {
	classifier Classifier
	logger     logging.Logger
	opts       Options
	errOut     io.WriteCloser

	// save writes an upload to disk; nil uses gin's SaveUploadedFile.
	save func(header *multipart.FileHeader, dst string) error
}

// New creates a Server.
func New(classifier Classifier, logger logging.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = models.MaxUploadBytes
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = models.AcceptedImageExtensions
	}
	logger = logging.OrDiscard(logger)
	return &Server{classifier: classifier, logger: logger, opts: opts, errOut: logging.ErrorWriter(logger)}
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.RecoveryWithWriter(s.errOut), s.requestLogger(), cors())
	router.MaxMultipartMemory = 8 << 20

	router.GET("/", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/categorize", s.categorize)
	}
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	defer func() { _ = s.errOut.Close() }()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", logging.F("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, HealthText)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			logging.F("method", c.Request.Method),
			logging.F("path", c.FullPath()),
			logging.F(logging.FieldStatusCode, c.Writer.Status()),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
