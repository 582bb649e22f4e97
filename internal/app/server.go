package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/s3handler/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/s3handler/internal/api/middlewares"
	"github.com/markdave123-py/s3handler/internal/config"
	"github.com/markdave123-py/s3handler/pkg/logger"
	"github.com/markdave123-py/s3handler/pkg/objectclient"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewRouter builds the chi router with middleware and every route.
func NewRouter(cfg *config.Config, store objectclient.ObjectStorage, metrics *appMiddleware.Metrics) http.Handler {
	objHandler := handlers.NewObjectHandler(store, handlers.Limits{
		MaxFileSize: cfg.MaxFileSize,
		MaxFiles:    cfg.MaxFiles,
		MaxPartSize: cfg.MaxPartSize,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/upload", objHandler.Upload)
	r.Get("/list", objHandler.List)
	r.Get("/list-root", objHandler.ListRoot)
	r.Delete("/", objHandler.Delete)
	r.Get("/presigned-url", objHandler.DownloadURL)
	r.Post("/upload-url", objHandler.UploadURL)

	r.Route("/multipart", func(mp chi.Router) {
		mp.Post("/initiate", objHandler.InitiateMultipart)
		mp.Post("/part-urls", objHandler.PartURLs)
		mp.Put("/part", objHandler.UploadPart)
		mp.Post("/complete", objHandler.CompleteMultipart)
		mp.Post("/abort", objHandler.AbortMultipart)
	})

	return r
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, store objectclient.ObjectStorage) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, store, appMiddleware.NewMetrics()),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	logger.Log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
