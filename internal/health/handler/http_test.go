package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

type fakeCatalog struct{ codes []string }

func (c fakeCatalog) Translations() []string { return c.codes }

func doHealthz(t *testing.T, h *Handler) (*httptest.ResponseRecorder, healthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return rec, body
}

func TestHealthz_OK(t *testing.T) {
	h := NewHandler(fakePinger{}, fakeCatalog{codes: []string{"WEB"}})
	rec, body := doHealthz(t, h)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if body.Status != "ok" || body.Database != "ok" {
		t.Errorf("body = %+v", body)
	}
	if len(body.Translations) != 1 {
		t.Errorf("translations = %v", body.Translations)
	}
}

func TestHealthz_DatabaseDown(t *testing.T) {
	h := NewHandler(fakePinger{err: errors.New("down")}, nil)
	rec, body := doHealthz(t, h)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if body.Status != "degraded" || body.Database != "unreachable" {
		t.Errorf("body = %+v", body)
	}
}

func TestHealthz_NoDatabaseConfigured(t *testing.T) {
	h := NewHandler(nil, nil)
	rec, body := doHealthz(t, h)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if body.Database != "disabled" {
		t.Errorf("database = %q", body.Database)
	}
}
