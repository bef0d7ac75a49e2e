package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dastanaron/bookmarks/internal/models"
	"github.com/dastanaron/bookmarks/internal/session"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

// respondError writes {"error": message}
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors onto status codes
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, notFound)
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.auth.Authorized(r)
		if err != nil {
			s.log.Error().Err(err).Msg("session lookup failed")
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := s.auth.Login(r.Context(), req.Password)
	if errors.Is(err, session.ErrUnauthorized) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("rejected login")
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("login failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), getTokenFromHeader(r)); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete session")
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	full := r.URL.Query().Get("visibility") == "all"
	if full {
		ok, err := s.auth.Authorized(r)
		if err != nil {
			s.respondServiceError(w, r, err, "")
			return
		}
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
	}

	ds, err := s.svc.Dataset(r.Context(), full)
	if err != nil {
		s.respondServiceError(w, r, err, "")
		return
	}
	respondJSON(w, http.StatusOK, ds)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var payload models.SortPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if err := s.svc.ApplySort(r.Context(), payload); err != nil {
		s.respondServiceError(w, r, err, "Category not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := s.svc.CreateCategory(r.Context(), in)
	if err != nil {
		s.respondServiceError(w, r, err, "Category not found")
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := s.svc.UpdateCategory(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		s.respondServiceError(w, r, err, "Category not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteCategory(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.respondServiceError(w, r, err, "Category not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	var in models.BookmarkInput
	if !decodeBody(w, r, &in) {
		return
	}
	b, err := s.svc.CreateBookmark(r.Context(), in)
	if err != nil {
		s.respondServiceError(w, r, err, "Bookmark not found")
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUpdateBookmark(w http.ResponseWriter, r *http.Request) {
	var in models.BookmarkInput
	if !decodeBody(w, r, &in) {
		return
	}
	b, err := s.svc.UpdateBookmark(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		s.respondServiceError(w, r, err, "Bookmark not found")
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBookmark(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.respondServiceError(w, r, err, "Bookmark not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
