// Package handler exposes the passage read endpoints.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"wtrfll/server/internal/passage"
)

// Resolver answers passage lookups and lists served translations.
type Resolver interface {
	Resolve(ctx context.Context, translation, reference string) (*passage.Passage, error)
	Translations() []string
}

// Handler serves GET /api/passages and GET /api/translations.
type Handler struct {
	resolver Resolver
}

// NewHandler returns a Handler backed by the resolver.
func NewHandler(resolver Resolver) *Handler {
	return &Handler{resolver: resolver}
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type translationsResponse struct {
	Translations []string `json:"translations"`
}

// GetPassage handles GET /api/passages?translation=...&reference=...
func (h *Handler) GetPassage(w http.ResponseWriter, r *http.Request) {
	translation := strings.TrimSpace(r.URL.Query().Get("translation"))
	reference := strings.TrimSpace(r.URL.Query().Get("reference"))
	if translation == "" || reference == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "invalid_request",
			Detail: "translation and reference query parameters are required",
		})
		return
	}

	p, err := h.resolver.Resolve(r.Context(), translation, reference)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:  "not_found",
			Detail: "translation or reference not available",
		})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetTranslations handles GET /api/translations.
func (h *Handler) GetTranslations(w http.ResponseWriter, r *http.Request) {
	codes := h.resolver.Translations()
	if codes == nil {
		codes = []string{}
	}
	writeJSON(w, http.StatusOK, translationsResponse{Translations: codes})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
