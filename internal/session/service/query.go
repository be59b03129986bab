package service

import (
	"context"
	"time"

	"wtrfll/server/internal/session/domain"
)

const (
	// upcomingGraceWindow keeps recently finished sessions listed so a device
	// can rejoin shortly after the event.
	upcomingGraceWindow = 7 * 24 * time.Hour
	upcomingLimit       = 50
)

// UpcomingSession is a session listing row. Join tokens are included so the
// operator UI can hand out join links without a second lookup.
type UpcomingSession struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	ShortCode           string     `json:"shortCode"`
	ControllerJoinToken string     `json:"controllerJoinToken"`
	DisplayJoinToken    string     `json:"displayJoinToken"`
	CreatedAt           time.Time  `json:"createdAt"`
	ScheduledAt         *time.Time `json:"scheduledAt,omitempty"`
}

// QueryService answers session listing queries.
type QueryService struct {
	store Store
	now   func() time.Time
}

// NewQueryService returns a QueryService backed by the given store.
func NewQueryService(store Store) *QueryService {
	return &QueryService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// UpcomingSessions lists sessions scheduled (or created, when unscheduled)
// within the grace window, oldest first, capped at 50.
func (s *QueryService) UpcomingSessions(ctx context.Context) ([]*UpcomingSession, error) {
	since := s.now().Add(-upcomingGraceWindow)
	sessions, err := s.store.ListRecent(ctx, since, upcomingLimit)
	if err != nil {
		return nil, err
	}
	out := make([]*UpcomingSession, len(sessions))
	for i, sess := range sessions {
		out[i] = toUpcoming(sess)
	}
	return out, nil
}

func toUpcoming(s *domain.Session) *UpcomingSession {
	return &UpcomingSession{
		ID:                  s.ID,
		Name:                s.Name,
		ShortCode:           s.ShortCode,
		ControllerJoinToken: s.ControllerJoinToken,
		DisplayJoinToken:    s.DisplayJoinToken,
		CreatedAt:           s.CreatedAt,
		ScheduledAt:         s.ScheduledAt,
	}
}
