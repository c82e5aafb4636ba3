package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/dkarlsen/marksite/internal/site"
)

// NewServer creates and configures the HTTP server for the site.
func NewServer(s *site.Site) *http.Server {
	h := &Handlers{
		site:     s,
		renderer: NewRenderer(s.Log),
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax. The literal /blog/latest wins
	// over the /blog/{slug} wildcard.
	mux.HandleFunc("GET /{$}", h.HandleHome)
	mux.HandleFunc("GET /blog/latest", h.HandleLatest)
	mux.HandleFunc("GET /blog/{slug}", h.HandleArticle)
	mux.HandleFunc("GET /docs/{page}", h.HandleDoc)
	mux.HandleFunc("GET /docs/{page}/{path...}", h.HandleDoc)
	mux.HandleFunc("GET /feed", h.HandleFeed)

	handler := securityHeaders(accessLog(s.Log, mux))

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.Config.Server.Bind, s.Config.Server.Port),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// accessLog tags each request with a ULID request ID and logs its outcome.
func accessLog(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := ulid.Make().String()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, log *zap.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("serving", zap.String("addr", srv.Addr))

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
