// Package httpapi is the JSON-over-HTTP presentation layer of minibi. It
// authenticates the caller and passes the acting account id explicitly to
// the services.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/minibi/internal/logging"
	"github.com/dmitrijs2005/minibi/internal/server/metrics"
	"github.com/dmitrijs2005/minibi/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// Services is the set of business services the handlers call.
type Services struct {
	Identity *services.IdentityService
	Notes    *services.NoteService
	Files    *services.FileService
	Sharing  *services.SharingService
	Gateway  *services.AccessGateway
	Export   *services.ExportService
}

type HTTPServer struct {
	address        string
	logger         logging.Logger
	services       Services
	metrics        *metrics.Metrics
	jwtSecret      []byte
	maxUploadBytes int64
}

func NewHTTPServer(address string, l logging.Logger, svc Services, m *metrics.Metrics, secretKey string, maxUploadBytes int64) *HTTPServer {
	return &HTTPServer{
		address:        address,
		logger:         l.With("module", "http_server"),
		services:       svc,
		metrics:        m,
		jwtSecret:      []byte(secretKey),
		maxUploadBytes: maxUploadBytes,
	}
}

// Router builds the gin engine with every route and middleware.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.requestLogger())
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)

	protected := api.Group("")
	protected.Use(s.accessToken())
	protected.POST("/auth/logout", s.logout)
	protected.GET("/users", s.listUsers)
	protected.DELETE("/account", s.deleteAccount)

	protected.GET("/notes", s.listNotes)
	protected.POST("/notes", s.createNote)
	protected.GET("/notes/:id", s.readNote)
	protected.PUT("/notes/:id", s.editNote)
	protected.DELETE("/notes/:id", s.deleteNote)
	protected.POST("/notes/:id/shares", s.share(kindNote))
	protected.GET("/notes/:id/shares", s.listGrants(kindNote))
	protected.DELETE("/notes/:id/shares/:username", s.revoke(kindNote))

	protected.GET("/files", s.listFiles)
	protected.POST("/files", s.uploadFile)
	protected.GET("/files/:id/content", s.readFile)
	protected.PATCH("/files/:id", s.renameFile)
	protected.DELETE("/files/:id", s.deleteFile)
	protected.POST("/files/:id/shares", s.share(kindFile))
	protected.GET("/files/:id/shares", s.listGrants(kindFile))
	protected.DELETE("/files/:id/shares/:username", s.revoke(kindFile))
	protected.GET("/files/:id/summary", s.summary)
	protected.POST("/files/:id/query", s.query)
	protected.POST("/files/:id/export", s.export)

	protected.GET("/shared/notes", s.sharedNotes)
	protected.GET("/shared/files", s.sharedFiles)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
