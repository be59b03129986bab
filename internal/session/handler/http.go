// Package handler exposes the session lifecycle over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wtrfll/server/internal/session/domain"
	"wtrfll/server/internal/session/service"
)

// Lifecycle is the session lifecycle surface the handler needs.
type Lifecycle interface {
	CreateSession(ctx context.Context, name string, scheduledAt *time.Time) (*service.SessionCreated, error)
	JoinSession(ctx context.Context, sessionID string, role domain.Role, joinToken string) (*service.JoinResult, error)
}

// Query answers session listing requests.
type Query interface {
	UpcomingSessions(ctx context.Context) ([]*service.UpcomingSession, error)
}

// Handler serves the /api/sessions endpoints.
type Handler struct {
	lifecycle Lifecycle
	query     Query
}

// NewHandler returns a Handler over the session services.
func NewHandler(lifecycle Lifecycle, query Query) *Handler {
	return &Handler{lifecycle: lifecycle, query: query}
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type createRequest struct {
	Name        string     `json:"name"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

type joinRequest struct {
	Role      string `json:"role"`
	JoinToken string `json:"joinToken"`
}

// Create handles POST /api/sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Detail: "malformed JSON body"})
			return
		}
	}

	created, err := h.lifecycle.CreateSession(r.Context(), req.Name, req.ScheduledAt)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Join handles POST /api/sessions/{id}/join.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Detail: "malformed JSON body"})
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Detail: "role must be controller or display"})
		return
	}

	result, err := h.lifecycle.JoinSession(r.Context(), chi.URLParam(r, "id"), role, req.JoinToken)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}

	switch result.Status {
	case service.JoinSuccess:
		writeJSON(w, http.StatusOK, result.Payload)
	case service.JoinControllerLocked:
		writeJSON(w, http.StatusConflict, result.Payload)
	case service.JoinInvalidToken:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_token", Detail: "join token does not match"})
	case service.JoinNotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Detail: "unknown session"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}

// Upcoming handles GET /api/sessions/upcoming.
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.query.UpcomingSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}
	if sessions == nil {
		sessions = []*service.UpcomingSession{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
