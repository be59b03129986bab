package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	lyricssvc "wtrfll/server/internal/lyrics/service"
	"wtrfll/server/internal/passage"
	"wtrfll/server/internal/session/domain"
	"wtrfll/server/internal/telemetry"
)

// RejectionError is a message-level refusal. The transport reports the
// reason to the offending connection as an error frame and keeps the
// connection open; any other error is internal and is not echoed back.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string { return e.Reason }

func reject(reason string) error { return &RejectionError{Reason: reason} }

// Rejection reasons sent back to clients.
const (
	reasonNoSession       = "Connection is not associated with a session."
	reasonNotController   = "Only controllers can publish state patches."
	reasonNotLyricsSender = "Only controllers can publish lyrics."
	reasonBadVersion      = "Unsupported contract version."
	reasonSessionMismatch = "Session mismatch."
	reasonIncomplete      = "Patch payload is incomplete."
	reasonContentMiss     = "Translation or reference not available."
	reasonBadCommand      = "Invalid display command."
	reasonLyricsMissing   = "Lyrics entry not found."
	reasonLyricsNoText    = "Lyrics text is required."
)

// TokenValidator re-checks a join token at handshake time without creating a
// participant.
type TokenValidator interface {
	ValidateJoinToken(ctx context.Context, sessionID string, role domain.Role, joinToken string) (bool, error)
}

// PassageResolver resolves a translation and reference to verses, returning
// (nil, nil) on a content miss.
type PassageResolver interface {
	Resolve(ctx context.Context, translation, reference string) (*passage.Passage, error)
}

// LyricsPresenter builds the display payload for a lyrics patch.
type LyricsPresenter interface {
	BuildPresentation(ctx context.Context, req lyricssvc.PresentationRequest) (*lyricssvc.Presentation, error)
}

// HandshakeParams are the query parameters a client presents when opening a
// realtime connection.
type HandshakeParams struct {
	SessionID string
	Role      string
	JoinToken string
}

// Hub validates handshakes, enforces the controller-only patch rules, and
// broadcasts resolved state to the session's displays.
type Hub struct {
	registry *Registry
	groups   *Broadcaster
	commands *CommandStore
	tokens   TokenValidator
	passages PassageResolver
	lyrics   LyricsPresenter
	events   telemetry.Emitter
	now      func() time.Time
}

// NewHub wires a Hub from its collaborators. events may be nil.
func NewHub(tokens TokenValidator, passages PassageResolver, lyrics LyricsPresenter, events telemetry.Emitter) *Hub {
	return &Hub{
		registry: NewRegistry(),
		groups:   NewBroadcaster(),
		commands: NewCommandStore(),
		tokens:   tokens,
		passages: passages,
		lyrics:   lyrics,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Connect authenticates a new connection and joins it to its session group.
// The returned error means the connection must be dropped without an error
// frame; nothing is registered when it is non-nil.
func (h *Hub) Connect(ctx context.Context, connID string, sender Sender, params HandshakeParams) (ConnectionContext, error) {
	var zero ConnectionContext

	if _, err := uuid.Parse(params.SessionID); err != nil {
		return zero, fmt.Errorf("handshake: invalid session id %q", params.SessionID)
	}
	role, err := domain.ParseRole(params.Role)
	if err != nil {
		return zero, fmt.Errorf("handshake: %w", err)
	}
	if strings.TrimSpace(params.JoinToken) == "" {
		return zero, errors.New("handshake: join token is required")
	}

	ok, err := h.tokens.ValidateJoinToken(ctx, params.SessionID, role, params.JoinToken)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, errors.New("handshake: join token rejected")
	}

	cc := ConnectionContext{SessionID: params.SessionID, Role: role}
	if !h.registry.TryRegister(connID, cc) {
		return zero, fmt.Errorf("handshake: connection id %s already registered", connID)
	}
	h.groups.Subscribe(cc.GroupName(), connID, sender)

	h.emit(ctx, telemetry.EventConnectionOpened, cc, "")
	return cc, nil
}

// Disconnect removes a connection from the registry and its group. Safe to
// call for ids that never completed a handshake.
func (h *Hub) Disconnect(ctx context.Context, connID string) {
	cc, ok := h.registry.TryRemove(connID)
	if !ok {
		return
	}
	h.groups.Unsubscribe(cc.GroupName(), connID)
	h.emit(ctx, telemetry.EventConnectionClosed, cc, "")
}

// StatePatch applies a controller's state patch: the preconditions are
// checked in a fixed order, the passage is resolved, the sticky display
// command is advanced, and the resolved state goes out to everyone else in
// the session group.
func (h *Hub) StatePatch(ctx context.Context, connID string, msg *StatePatchMessage) error {
	cc, ok := h.registry.TryGet(connID)
	if !ok {
		return reject(reasonNoSession)
	}
	if !cc.IsController() {
		return reject(reasonNotController)
	}
	if msg.ContractVersion != ContractVersion {
		return reject(reasonBadVersion)
	}
	if msg.SessionID != cc.SessionID {
		return reject(reasonSessionMismatch)
	}
	if msg.Patch == nil ||
		strings.TrimSpace(msg.Patch.Translation) == "" ||
		strings.TrimSpace(msg.Patch.PassageRef) == "" {
		return reject(reasonIncomplete)
	}

	resolved, err := h.passages.Resolve(ctx, msg.Patch.Translation, msg.Patch.PassageRef)
	if err != nil {
		return err
	}
	if resolved == nil {
		return reject(reasonContentMiss)
	}

	command, err := h.commands.Resolve(cc.SessionID, msg.Patch.DisplayCommand)
	if err != nil {
		return reject(reasonBadCommand)
	}

	update := &StateUpdateMessage{
		ContractVersion: ContractVersion,
		SessionID:       cc.SessionID,
		State: RealtimeState{
			Translation:    resolved.Translation,
			Reference:      resolved.Reference,
			Verses:         resolved.Verses,
			CurrentIndex:   msg.Patch.CurrentIndex,
			Options:        msg.Patch.Options,
			Attribution:    resolved.Attribution,
			DisplayCommand: command,
		},
	}
	h.groups.BroadcastOthers(cc.GroupName(), connID, KindStateUpdate, update)

	h.emit(ctx, telemetry.EventStateBroadcast, cc, resolved.Reference)
	return nil
}

// LyricsPatch applies a controller's lyrics patch and broadcasts the
// resolved song to the session's displays.
func (h *Hub) LyricsPatch(ctx context.Context, connID string, msg *LyricsPatchMessage) error {
	cc, ok := h.registry.TryGet(connID)
	if !ok {
		return reject(reasonNoSession)
	}
	if !cc.IsController() {
		return reject(reasonNotLyricsSender)
	}
	if msg.ContractVersion != ContractVersion {
		return reject(reasonBadVersion)
	}
	if msg.SessionID != cc.SessionID {
		return reject(reasonSessionMismatch)
	}
	if msg.Patch == nil {
		return reject(reasonIncomplete)
	}

	presentation, err := h.lyrics.BuildPresentation(ctx, lyricssvc.PresentationRequest{
		LyricsID:  msg.Patch.LyricsID,
		Title:     msg.Patch.Title,
		Author:    msg.Patch.Author,
		ChordPro:  msg.Patch.ChordPro,
		FontScale: msg.Patch.FontScale,
	})
	if errors.Is(err, lyricssvc.ErrEntryNotFound) {
		return reject(reasonLyricsMissing)
	}
	if errors.Is(err, lyricssvc.ErrTextRequired) {
		return reject(reasonLyricsNoText)
	}
	if err != nil {
		return err
	}

	update := &LyricsUpdateMessage{
		ContractVersion: ContractVersion,
		SessionID:       cc.SessionID,
		Lyrics: LyricsState{
			LyricsID:  presentation.LyricsID,
			Title:     presentation.Title,
			Author:    presentation.Author,
			Lines:     presentation.Lines,
			FontScale: presentation.FontScale,
		},
	}
	h.groups.BroadcastOthers(cc.GroupName(), connID, KindLyricsUpdate, update)

	h.emit(ctx, telemetry.EventLyricsBroadcast, cc, presentation.Title)
	return nil
}

// Heartbeat answers a client liveness probe. The reply goes only to the
// caller and always reflects the connection's bound session; the request
// body is advisory.
func (h *Hub) Heartbeat(ctx context.Context, connID string, _ *HeartbeatRequest) (*HeartbeatMessage, error) {
	cc, ok := h.registry.TryGet(connID)
	if !ok {
		return nil, reject(reasonNoSession)
	}
	return &HeartbeatMessage{
		ContractVersion: ContractVersion,
		SessionID:       cc.SessionID,
		Role:            strings.ToLower(string(cc.Role)),
		ServerTime:      h.now(),
	}, nil
}

// GroupSize reports the number of live connections in a session's group.
func (h *Hub) GroupSize(sessionID string) int {
	return h.groups.GroupSize("session:" + sessionID)
}

func (h *Hub) emit(ctx context.Context, name string, cc ConnectionContext, detail string) {
	if h.events == nil {
		return
	}
	h.events.EmitAsync(ctx, &telemetry.Event{
		Name:      name,
		SessionID: cc.SessionID,
		Role:      string(cc.Role),
		Detail:    detail,
		At:        h.now(),
	})
}
