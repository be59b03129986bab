// Package service implements the session lifecycle: creating sessions with
// role-scoped join secrets and a shareable short code, joining under the
// single-controller invariant, and read-only token validation for the
// realtime handshake.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"wtrfll/server/internal/security"
	"wtrfll/server/internal/session/domain"
	"wtrfll/server/internal/session/repository"
	"wtrfll/server/internal/telemetry"
)

// shortCodeMaxAttempts bounds the collision-retry loop. At 32^6 codes the
// loop retries essentially never; the bound turns a broken store into an
// error instead of a spin.
const shortCodeMaxAttempts = 100

// ErrShortCodeSpaceExhausted is returned when a unique short code could not
// be generated within the attempt bound.
var ErrShortCodeSpaceExhausted = errors.New("could not allocate a unique short code")

// Store is the minimal session persistence needed by the lifecycle service.
type Store interface {
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSessionByID(ctx context.Context, id string) (*domain.Session, error)
	ShortCodeExists(ctx context.Context, code string) (bool, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.Session, error)
	AddParticipant(ctx context.Context, p *domain.Participant) error
}

// SessionCreated is the payload returned to the creator. It is the only time
// both join tokens leave the server together.
type SessionCreated struct {
	ID                  string     `json:"id"`
	ShortCode           string     `json:"shortCode"`
	ControllerJoinToken string     `json:"controllerJoinToken"`
	DisplayJoinToken    string     `json:"displayJoinToken"`
	CreatedAt           time.Time  `json:"createdAt"`
	Name                string     `json:"name"`
	ScheduledAt         *time.Time `json:"scheduledAt,omitempty"`
}

// JoinStatus discriminates the outcome of a join attempt.
type JoinStatus int

const (
	// JoinSuccess means a participant row was created.
	JoinSuccess JoinStatus = iota
	// JoinInvalidToken means the token did not match the role's stored token.
	JoinInvalidToken
	// JoinControllerLocked means a controller already holds this session's seat.
	JoinControllerLocked
	// JoinNotFound means the session id is unknown.
	JoinNotFound
)

// JoinPayload carries enough session identity for the caller to render a
// result (including an "already in use" view on ControllerLocked) without a
// second round trip.
type JoinPayload struct {
	Ok               bool        `json:"ok"`
	ControllerLocked bool        `json:"controllerLocked"`
	Message          string      `json:"message,omitempty"`
	SessionID        string      `json:"sessionId"`
	ShortCode        string      `json:"shortCode"`
	Role             domain.Role `json:"role"`
	Name             string      `json:"name"`
	ScheduledAt      *time.Time  `json:"scheduledAt,omitempty"`
}

// JoinResult is the tagged outcome of JoinSession. Payload is set for
// JoinSuccess and JoinControllerLocked.
type JoinResult struct {
	Status  JoinStatus
	Payload *JoinPayload
}

// LifecycleService creates sessions, accepts joins, and validates join tokens.
type LifecycleService struct {
	store  Store
	events telemetry.Emitter
	now    func() time.Time
}

// NewLifecycleService returns a LifecycleService backed by the given store.
func NewLifecycleService(store Store) *LifecycleService {
	return &LifecycleService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithEvents attaches a telemetry emitter and returns the service.
func (s *LifecycleService) WithEvents(events telemetry.Emitter) *LifecycleService {
	s.events = events
	return s
}

func (s *LifecycleService) emit(ctx context.Context, name, sessionID string, role domain.Role, detail string) {
	if s.events == nil {
		return
	}
	s.events.EmitAsync(ctx, &telemetry.Event{
		Name:      name,
		SessionID: sessionID,
		Role:      string(role),
		Detail:    detail,
		At:        s.now(),
	})
}

// CreateSession allocates a unique short code and two independent join
// tokens, then persists the session. A blank name falls back to
// "Session <shortCode>". scheduledAt is normalized to UTC.
func (s *LifecycleService) CreateSession(ctx context.Context, name string, scheduledAt *time.Time) (*SessionCreated, error) {
	shortCode, err := s.generateUniqueShortCode(ctx)
	if err != nil {
		return nil, err
	}

	controllerToken, err := security.GenerateJoinToken()
	if err != nil {
		return nil, err
	}
	displayToken, err := security.GenerateJoinToken()
	if err != nil {
		return nil, err
	}
	for controllerToken == displayToken {
		if displayToken, err = security.GenerateJoinToken(); err != nil {
			return nil, err
		}
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = "Session " + shortCode
	}

	var scheduledUTC *time.Time
	if scheduledAt != nil {
		t := scheduledAt.UTC()
		scheduledUTC = &t
	}

	sess := &domain.Session{
		ID:                  uuid.New().String(),
		ShortCode:           shortCode,
		ControllerJoinToken: controllerToken,
		DisplayJoinToken:    displayToken,
		Status:              domain.StatusPending,
		Name:                trimmed,
		CreatedAt:           s.now(),
		ScheduledAt:         scheduledUTC,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	s.emit(ctx, telemetry.EventSessionCreated, sess.ID, "", sess.ShortCode)

	return &SessionCreated{
		ID:                  sess.ID,
		ShortCode:           sess.ShortCode,
		ControllerJoinToken: sess.ControllerJoinToken,
		DisplayJoinToken:    sess.DisplayJoinToken,
		CreatedAt:           sess.CreatedAt,
		Name:                sess.Name,
		ScheduledAt:         sess.ScheduledAt,
	}, nil
}

// JoinSession validates the token for the role and records the participant.
// The controller check-then-insert is atomic in the store, so concurrent
// controller joins on one session yield exactly one JoinSuccess.
func (s *LifecycleService) JoinSession(ctx context.Context, sessionID string, role domain.Role, joinToken string) (*JoinResult, error) {
	sess, err := s.store.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return &JoinResult{Status: JoinNotFound}, nil
	}

	if !security.TokenEqual(joinToken, sess.JoinTokenFor(role)) {
		s.emit(ctx, telemetry.EventJoinRejected, sess.ID, role, "invalid token")
		return &JoinResult{Status: JoinInvalidToken}, nil
	}

	participant := &domain.Participant{
		ID:        uuid.New().String(),
		SessionID: sess.ID,
		Role:      role,
		JoinedAt:  s.now(),
	}
	err = s.store.AddParticipant(ctx, participant)
	if errors.Is(err, repository.ErrControllerSeatTaken) {
		s.emit(ctx, telemetry.EventJoinRejected, sess.ID, role, "controller seat taken")
		return &JoinResult{
			Status: JoinControllerLocked,
			Payload: &JoinPayload{
				Ok:               false,
				ControllerLocked: true,
				Message:          "Controller already joined this session.",
				SessionID:        sess.ID,
				ShortCode:        sess.ShortCode,
				Role:             role,
				Name:             sess.Name,
				ScheduledAt:      sess.ScheduledAt,
			},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	s.emit(ctx, telemetry.EventSessionJoined, sess.ID, role, "")

	return &JoinResult{
		Status: JoinSuccess,
		Payload: &JoinPayload{
			Ok:          true,
			SessionID:   sess.ID,
			ShortCode:   sess.ShortCode,
			Role:        role,
			Name:        sess.Name,
			ScheduledAt: sess.ScheduledAt,
		},
	}, nil
}

// ValidateJoinToken is the read-only token check used at realtime-handshake
// time. It never creates a participant row: the handshake re-validates
// membership, it does not re-join.
func (s *LifecycleService) ValidateJoinToken(ctx context.Context, sessionID string, role domain.Role, joinToken string) (bool, error) {
	sess, err := s.store.GetSessionByID(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}
	return security.TokenEqual(joinToken, sess.JoinTokenFor(role)), nil
}

func (s *LifecycleService) generateUniqueShortCode(ctx context.Context) (string, error) {
	for i := 0; i < shortCodeMaxAttempts; i++ {
		candidate, err := security.GenerateShortCode()
		if err != nil {
			return "", err
		}
		exists, err := s.store.ShortCodeExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrShortCodeSpaceExhausted
}
