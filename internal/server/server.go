// Package server is the HTTP backend of the dashboard.
//
// Routes:
//
//	GET    /health
//	GET    /bookmarks                  public projection
//	GET    /bookmarks?visibility=all   full dataset, admin session required
//	POST   /login                      {"password"} -> {"token"}
//	POST   /logout
//	POST   /sort                       {"bookmarksOrder": {categoryId: [bookmarkId]}}
//	POST   /categories
//	PUT    /categories/{id}
//	DELETE /categories/{id}
//	POST   /bookmarks
//	PUT    /bookmarks/{id}
//	DELETE /bookmarks/{id}
//
// Everything except the public read, /health, /login and /logout needs
// an "Authorization: Bearer <token>" header from a successful login.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dastanaron/bookmarks/internal/service"
)

// Server serves the dashboard API
type Server struct {
	svc    *service.DashboardService
	auth   *Authenticator
	log    zerolog.Logger
	router *mux.Router
}

// New creates a server with its routes registered
func New(svc *service.DashboardService, auth *Authenticator, log zerolog.Logger) *Server {
	s := &Server{
		svc:  svc,
		auth: auth,
		log:  log.With().Str("component", "server").Logger(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	router.HandleFunc("/login", s.handleLogin).Methods("POST")
	router.HandleFunc("/logout", s.handleLogout).Methods("POST")

	router.HandleFunc("/bookmarks", s.handleDataset).Methods("GET")
	router.HandleFunc("/sort", s.requireAdmin(s.handleSort)).Methods("POST")

	router.HandleFunc("/categories", s.requireAdmin(s.handleCreateCategory)).Methods("POST")
	router.HandleFunc("/categories/{id}", s.requireAdmin(s.handleUpdateCategory)).Methods("PUT")
	router.HandleFunc("/categories/{id}", s.requireAdmin(s.handleDeleteCategory)).Methods("DELETE")

	router.HandleFunc("/bookmarks", s.requireAdmin(s.handleCreateBookmark)).Methods("POST")
	router.HandleFunc("/bookmarks/{id}", s.requireAdmin(s.handleUpdateBookmark)).Methods("PUT")
	router.HandleFunc("/bookmarks/{id}", s.requireAdmin(s.handleDeleteBookmark)).Methods("DELETE")

	router.Use(s.logRequests)
	s.router = router
}

// Handler returns the HTTP handler of the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("starting dashboard server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
