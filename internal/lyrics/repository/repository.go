// Package repository persists the lyrics catalog.
package repository

import (
	"context"
	"errors"

	"wtrfll/server/internal/lyrics/domain"
)

// ErrEntryNotFound is returned by updates and deletes against an unknown id.
var ErrEntryNotFound = errors.New("lyrics entry not found")

// Repository is the lyrics catalog persistence contract. GetByID returns
// (nil, nil) when the id is unknown.
type Repository interface {
	Create(ctx context.Context, e *domain.Entry) error
	Update(ctx context.Context, e *domain.Entry) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.Summary, error)
}
