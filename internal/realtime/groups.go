package realtime

import "sync"

// Sender delivers one framed message to a single connection. Implementations
// must preserve call order per connection.
type Sender interface {
	Send(kind string, payload any) error
}

// Broadcaster tracks group membership and fans messages out to every member.
// Delivery is best effort: a member whose Sender errors is skipped, not
// retried, since the transport tears the connection down on its own.
type Broadcaster struct {
	mu     sync.RWMutex
	groups map[string]map[string]Sender
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{groups: make(map[string]map[string]Sender)}
}

// Subscribe adds a connection to a group.
func (b *Broadcaster) Subscribe(group, connID string, s Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	members, ok := b.groups[group]
	if !ok {
		members = make(map[string]Sender)
		b.groups[group] = members
	}
	members[connID] = s
}

// Unsubscribe removes a connection from a group, dropping the group once
// empty.
func (b *Broadcaster) Unsubscribe(group, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	members, ok := b.groups[group]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(b.groups, group)
	}
}

// BroadcastOthers sends to every group member except the named connection.
func (b *Broadcaster) BroadcastOthers(group, exceptConnID, kind string, payload any) {
	for _, s := range b.membersExcept(group, exceptConnID) {
		_ = s.Send(kind, payload)
	}
}

// GroupSize reports the number of members in a group.
func (b *Broadcaster) GroupSize(group string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.groups[group])
}

func (b *Broadcaster) membersExcept(group, exceptConnID string) []Sender {
	b.mu.RLock()
	defer b.mu.RUnlock()
	members := b.groups[group]
	out := make([]Sender, 0, len(members))
	for id, s := range members {
		if id == exceptConnID {
			continue
		}
		out = append(out, s)
	}
	return out
}
