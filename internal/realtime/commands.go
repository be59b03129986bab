package realtime

import (
	"errors"
	"sync"
)

// ErrInvalidDisplayCommand is returned for a command outside the known set.
var ErrInvalidDisplayCommand = errors.New("invalid display command")

// IsValidDisplayCommand reports whether cmd names a known display command.
func IsValidDisplayCommand(cmd string) bool {
	switch cmd {
	case DisplayNormal, DisplayBlack, DisplayClear, DisplayFreeze:
		return true
	}
	return false
}

// CommandStore keeps the sticky display command per session. A patch that
// omits the command leaves the last one in effect; a session that never set
// one reads as normal. State is in-memory only and dies with the process.
type CommandStore struct {
	mu       sync.Mutex
	commands map[string]string
}

// NewCommandStore returns an empty command store.
func NewCommandStore() *CommandStore {
	return &CommandStore{commands: make(map[string]string)}
}

// Resolve applies the requested command for the session and returns the
// command now in effect. An empty request keeps (and returns) the current
// command; an unknown command returns ErrInvalidDisplayCommand and changes
// nothing.
func (s *CommandStore) Resolve(sessionID, requested string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if requested == "" {
		current, ok := s.commands[sessionID]
		if !ok {
			current = DisplayNormal
			s.commands[sessionID] = current
		}
		return current, nil
	}
	if !IsValidDisplayCommand(requested) {
		return "", ErrInvalidDisplayCommand
	}
	s.commands[sessionID] = requested
	return requested, nil
}

// Forget drops the sticky command for a session.
func (s *CommandStore) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.commands, sessionID)
}
