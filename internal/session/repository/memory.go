package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"wtrfll/server/internal/session/domain"
)

// MemoryRepository is an in-memory Repository implementation, used in tests
// and when the server runs without DATABASE_URL. The table mutex serializes
// AddParticipant, which gives the per-session controller check-then-insert
// its required atomicity.
type MemoryRepository struct {
	mu           sync.Mutex
	sessions     map[string]*domain.Session
	participants map[string][]*domain.Participant
}

// NewMemoryRepository returns an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions:     make(map[string]*domain.Session),
		participants: make(map[string][]*domain.Participant),
	}
}

// CreateSession persists the session.
func (r *MemoryRepository) CreateSession(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

// GetSessionByID returns the session for id, or nil if not found.
func (r *MemoryRepository) GetSessionByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

// ShortCodeExists reports whether any session already uses the short code.
func (r *MemoryRepository) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ShortCode == code {
			return true, nil
		}
	}
	return false, nil
}

// ListRecent returns up to limit sessions scheduled (or created, when
// unscheduled) at or after since, ordered by scheduled-or-created time.
func (r *MemoryRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	for _, s := range r.sessions {
		effective := s.CreatedAt
		if s.ScheduledAt != nil {
			effective = *s.ScheduledAt
		}
		if effective.Before(since) {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return effectiveTime(out[i]).Before(effectiveTime(out[j]))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AddParticipant inserts a participant row, enforcing controller exclusivity
// under the table mutex.
func (r *MemoryRepository) AddParticipant(ctx context.Context, p *domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[p.SessionID]; !ok {
		return ErrSessionNotFound
	}
	if p.Role == domain.RoleController {
		for _, existing := range r.participants[p.SessionID] {
			if existing.Role == domain.RoleController {
				return ErrControllerSeatTaken
			}
		}
	}
	copied := *p
	r.participants[p.SessionID] = append(r.participants[p.SessionID], &copied)
	return nil
}

// Participants returns the participants recorded for a session. Test helper.
func (r *MemoryRepository) Participants(sessionID string) []*domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Participant, len(r.participants[sessionID]))
	copy(out, r.participants[sessionID])
	return out
}

func effectiveTime(s *domain.Session) time.Time {
	if s.ScheduledAt != nil {
		return *s.ScheduledAt
	}
	return s.CreatedAt
}
