package repository

import (
	"context"
	"errors"
	"time"

	"wtrfll/server/internal/session/domain"
)

// Sentinel errors returned by AddParticipant; the service maps them to join outcomes.
var (
	// ErrSessionNotFound is returned when the owning session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrControllerSeatTaken is returned when a controller participant already
	// exists for the session. The check-then-insert is atomic per session.
	ErrControllerSeatTaken = errors.New("controller already joined this session")
)

// Repository defines persistence for sessions and participants.
type Repository interface {
	// CreateSession persists the session. The session must have ID and tokens set.
	CreateSession(ctx context.Context, s *domain.Session) error
	// GetSessionByID returns the session for id, or nil if not found.
	GetSessionByID(ctx context.Context, id string) (*domain.Session, error)
	// ShortCodeExists reports whether any session already uses the short code.
	ShortCodeExists(ctx context.Context, code string) (bool, error)
	// ListRecent returns up to limit sessions scheduled since the given time
	// (or created since it, when unscheduled), ordered by scheduled-or-created time.
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.Session, error)
	// AddParticipant inserts a participant row. For the controller role the
	// exists-check and insert are serialized per session: concurrent controller
	// joins yield exactly one success, the rest ErrControllerSeatTaken.
	AddParticipant(ctx context.Context, p *domain.Participant) error
}
