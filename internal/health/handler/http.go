// Package handler serves the liveness endpoint.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ContentCatalog reports which translations the server can serve.
type ContentCatalog interface {
	Translations() []string
}

// Handler serves GET /healthz. db may be nil when the server runs without
// Postgres.
type Handler struct {
	db      Pinger
	content ContentCatalog
}

// NewHandler returns a health handler over the given dependencies.
func NewHandler(db Pinger, content ContentCatalog) *Handler {
	return &Handler{db: db, content: content}
}

type healthResponse struct {
	Status       string   `json:"status"`
	Database     string   `json:"database"`
	Translations []string `json:"translations"`
}

// Healthz reports overall liveness: 200 when every configured dependency
// answers, 503 when the database does not.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "disabled", Translations: []string{}}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	if h.content != nil {
		if codes := h.content.Translations(); codes != nil {
			resp.Translations = codes
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
