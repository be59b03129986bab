// Package realtime implements the session hub: the websocket transport,
// connection registry, sticky display commands, and the group broadcast that
// keeps every display mirroring its controller.
package realtime

import (
	"encoding/json"
	"time"

	"wtrfll/server/internal/passage"
)

// ContractVersion is the wire contract understood by this server. Patches
// carrying any other version are rejected before validation of their content.
const ContractVersion = 1

// Display commands a controller can issue. The empty command on a patch means
// "keep whatever is in effect".
const (
	DisplayNormal = "normal"
	DisplayBlack  = "black"
	DisplayClear  = "clear"
	DisplayFreeze = "freeze"
)

// Message kinds on the wire envelope.
const (
	KindStatePatch   = "state:patch"
	KindStateUpdate  = "state:update"
	KindLyricsPatch  = "lyrics:patch"
	KindLyricsUpdate = "lyrics:update"
	KindHeartbeat    = "heartbeat"
	KindError        = "error"
)

// Envelope frames every websocket message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrorPayload is the body of an error frame sent back to the offending
// connection.
type ErrorPayload struct {
	Reason string `json:"reason"`
}

// PresentationOptions are the controller-owned display toggles, relayed to
// displays verbatim. Pointer fields distinguish "unset" from explicit zeros.
type PresentationOptions struct {
	ShowVerseNumbers *bool    `json:"showVerseNumbers,omitempty"`
	ShowReference    *bool    `json:"showReference,omitempty"`
	FontScale        *float64 `json:"fontScale,omitempty"`
	SafeMarginPct    *float64 `json:"safeMarginPct,omitempty"`
	Theme            *string  `json:"theme,omitempty"`
}

// StatePatchMessage is a controller's request to move the session's
// presentation state.
type StatePatchMessage struct {
	ContractVersion int             `json:"contractVersion"`
	SessionID       string          `json:"sessionId"`
	Patch           *StatePatchBody `json:"patch"`
}

// StatePatchBody is the patch content: which passage to show and how.
type StatePatchBody struct {
	Translation    string               `json:"translation"`
	PassageRef     string               `json:"passageRef"`
	CurrentIndex   int                  `json:"currentIndex"`
	Options        *PresentationOptions `json:"options,omitempty"`
	DisplayCommand string               `json:"displayCommand,omitempty"`
}

// StateUpdateMessage is the resolved state broadcast to the session's
// displays after a patch is accepted.
type StateUpdateMessage struct {
	ContractVersion int           `json:"contractVersion"`
	SessionID       string        `json:"sessionId"`
	State           RealtimeState `json:"state"`
}

// RealtimeState is the fully resolved presentation state a display renders.
type RealtimeState struct {
	Translation    string               `json:"translation"`
	Reference      string               `json:"reference"`
	Verses         []passage.Verse      `json:"verses"`
	CurrentIndex   int                  `json:"currentIndex"`
	Options        *PresentationOptions `json:"options,omitempty"`
	Attribution    *passage.Attribution `json:"attribution,omitempty"`
	DisplayCommand string               `json:"displayCommand"`
}

// HeartbeatRequest is an optional client heartbeat body; both fields may be
// absent.
type HeartbeatRequest struct {
	ContractVersion int    `json:"contractVersion,omitempty"`
	SessionID       string `json:"sessionId,omitempty"`
}

// HeartbeatMessage is the server's reply, sent only to the caller.
type HeartbeatMessage struct {
	ContractVersion int       `json:"contractVersion"`
	SessionID       string    `json:"sessionId"`
	Role            string    `json:"role"`
	ServerTime      time.Time `json:"serverTimestamp"`
}

// LyricsPatchMessage is a controller's request to show a song.
type LyricsPatchMessage struct {
	ContractVersion int              `json:"contractVersion"`
	SessionID       string           `json:"sessionId"`
	Patch           *LyricsPatchBody `json:"patch"`
}

// LyricsPatchBody names a stored entry, carries inline ChordPro, or both.
type LyricsPatchBody struct {
	LyricsID  string  `json:"lyricsId,omitempty"`
	Title     string  `json:"title,omitempty"`
	Author    string  `json:"author,omitempty"`
	ChordPro  string  `json:"lyricsChordPro,omitempty"`
	FontScale float64 `json:"fontScale,omitempty"`
}

// LyricsUpdateMessage is the resolved song broadcast to displays.
type LyricsUpdateMessage struct {
	ContractVersion int         `json:"contractVersion"`
	SessionID       string      `json:"sessionId"`
	Lyrics          LyricsState `json:"lyrics"`
}

// LyricsState is the display-ready song payload.
type LyricsState struct {
	LyricsID  string   `json:"lyricsId,omitempty"`
	Title     string   `json:"title,omitempty"`
	Author    string   `json:"author,omitempty"`
	Lines     []string `json:"lines"`
	FontScale float64  `json:"fontScale"`
}
