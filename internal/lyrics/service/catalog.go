// Package service implements the lyrics catalog and the presentation
// builder that turns a stored or inline song into display lines.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"wtrfll/server/internal/lyrics/domain"
	"wtrfll/server/internal/lyrics/repository"
)

const searchLimit = 100

// Sentinel errors surfaced by the catalog and presentation services.
var (
	ErrEntryNotFound = errors.New("lyrics entry not found")
	ErrTitleRequired = errors.New("lyrics title is required")
	ErrTextRequired  = errors.New("lyrics text is required")
)

// Store is the catalog persistence needed by the services.
type Store interface {
	Create(ctx context.Context, e *domain.Entry) error
	Update(ctx context.Context, e *domain.Entry) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.Summary, error)
}

// EntryInput is the write payload for creating or updating an entry.
type EntryInput struct {
	Title    string        `json:"title"`
	Author   string        `json:"author"`
	ChordPro string        `json:"chordPro"`
	Style    *domain.Style `json:"style,omitempty"`
}

// CatalogService manages stored songs. Font-scale overrides are clamped to
// the configured bounds on every write.
type CatalogService struct {
	store    Store
	minScale float64
	maxScale float64
	now      func() time.Time
}

// NewCatalogService returns a CatalogService with the given font-scale bounds.
func NewCatalogService(store Store, minScale, maxScale float64) *CatalogService {
	return &CatalogService{
		store:    store,
		minScale: minScale,
		maxScale: maxScale,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns catalog summaries matching the search query; a blank query
// lists the most recently updated entries.
func (s *CatalogService) List(ctx context.Context, query string) ([]*domain.Summary, error) {
	return s.store.Search(ctx, strings.TrimSpace(query), searchLimit)
}

// Get returns one entry by id.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Entry, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

// Create stores a new entry.
func (s *CatalogService) Create(ctx context.Context, input EntryInput) (*domain.Entry, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	now := s.now()
	e := &domain.Entry{
		ID:        uuid.New().String(),
		Title:     title,
		Author:    strings.TrimSpace(input.Author),
		ChordPro:  input.ChordPro,
		Style:     s.clampStyle(input.Style),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update rewrites an existing entry.
func (s *CatalogService) Update(ctx context.Context, id string, input EntryInput) (*domain.Entry, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrEntryNotFound
	}
	existing.Title = title
	existing.Author = strings.TrimSpace(input.Author)
	existing.ChordPro = input.ChordPro
	existing.Style = s.clampStyle(input.Style)
	existing.UpdatedAt = s.now()
	if err := s.store.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return existing, nil
}

// Delete removes an entry by id.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return ErrEntryNotFound
	}
	return err
}

func (s *CatalogService) clampStyle(style *domain.Style) *domain.Style {
	if style == nil || style.FontScale == nil {
		return style
	}
	scale := clamp(*style.FontScale, s.minScale, s.maxScale)
	return &domain.Style{FontScale: &scale}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
