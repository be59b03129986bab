// Package handler exposes the lyrics catalog over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wtrfll/server/internal/lyrics/service"
)

// Handler serves the /api/lyrics CRUD endpoints.
type Handler struct {
	catalog *service.CatalogService
}

// NewHandler returns a Handler over the catalog service.
func NewHandler(catalog *service.CatalogService) *Handler {
	return &Handler{catalog: catalog}
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// List handles GET /api/lyrics?search=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": emptyWhenNil(entries)})
}

// Get handles GET /api/lyrics/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Create handles POST /api/lyrics.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.EntryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Detail: "malformed JSON body"})
		return
	}
	entry, err := h.catalog.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Update handles PUT /api/lyrics/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.EntryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Detail: "malformed JSON body"})
		return
	}
	entry, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/lyrics/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Detail: err.Error()})
	case errors.Is(err, service.ErrTitleRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Detail: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}

func emptyWhenNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
