// Package domain holds the session entities: a scheduled or ad-hoc worship
// event identified by a shareable short code, with one join token per role.
package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the capacity in which a device binds to a session.
type Role string

const (
	// RoleController is the single device driving content for a session.
	RoleController Role = "controller"
	// RoleDisplay is a passive receiver rendering broadcast state.
	RoleDisplay Role = "display"
)

// ErrUnknownRole is returned by ParseRole for anything other than controller/display.
var ErrUnknownRole = errors.New("unknown session role")

// ParseRole parses a role string case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleController):
		return RoleController, nil
	case string(RoleDisplay):
		return RoleDisplay, nil
	default:
		return "", ErrUnknownRole
	}
}

// Status is the session lifecycle state. Pending is the only value emitted
// today; the column exists for future lifecycle use.
type Status string

// StatusPending is the initial (and currently only) session status.
const StatusPending Status = "pending"

// Session is one worship event. Join tokens are opaque role-scoped secrets;
// a controller token is never valid for the display role and vice versa.
// Sessions are append-only after creation: joins add participants, nothing
// else mutates the row.
type Session struct {
	ID                  string
	ShortCode           string
	ControllerJoinToken string
	DisplayJoinToken    string
	Status              Status
	Name                string
	CreatedAt           time.Time
	ScheduledAt         *time.Time
}

// JoinTokenFor returns the stored token for the given role.
func (s *Session) JoinTokenFor(role Role) string {
	if role == RoleController {
		return s.ControllerJoinToken
	}
	return s.DisplayJoinToken
}

// Participant is one accepted join. Rows are created exactly once and never
// removed: disconnect does not retract a join, which is why a controller
// seat stays consumed for the session's lifetime.
type Participant struct {
	ID        string
	SessionID string
	Role      Role
	JoinedAt  time.Time
}
