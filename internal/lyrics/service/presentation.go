package service

import (
	"context"
	"strings"

	"wtrfll/server/internal/lyrics/chordpro"
)

// defaultFontScale is used when neither the patch nor the stored style sets
// a scale.
const defaultFontScale = 1.0

// PresentationRequest is a controller's lyrics patch: either a stored entry
// id, inline ChordPro text, or both. Inline text wins over the stored body.
type PresentationRequest struct {
	LyricsID  string
	Title     string
	Author    string
	ChordPro  string
	FontScale float64
}

// Presentation is the resolved display state for a song.
type Presentation struct {
	LyricsID  string   `json:"lyricsId,omitempty"`
	Title     string   `json:"title,omitempty"`
	Author    string   `json:"author,omitempty"`
	Lines     []string `json:"lines"`
	FontScale float64  `json:"fontScale"`
}

// PresentationService turns presentation requests into display payloads.
type PresentationService struct {
	store    Store
	minScale float64
	maxScale float64
}

// NewPresentationService returns a PresentationService with the given
// font-scale bounds.
func NewPresentationService(store Store, minScale, maxScale float64) *PresentationService {
	return &PresentationService{store: store, minScale: minScale, maxScale: maxScale}
}

// BuildPresentation resolves the request against the catalog. The stored
// entry is consulted only when the patch carries no usable text; it then
// supplies the body and fills in whatever the patch leaves blank.
// ErrEntryNotFound is returned when that lookup misses and ErrTextRequired
// when no song text is available at all.
func (s *PresentationService) BuildPresentation(ctx context.Context, req PresentationRequest) (*Presentation, error) {
	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	text := req.ChordPro
	var entryScale *float64

	if strings.TrimSpace(text) == "" && req.LyricsID != "" {
		entry, err := s.store.GetByID(ctx, req.LyricsID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, ErrEntryNotFound
		}
		text = entry.ChordPro
		if title == "" {
			title = entry.Title
		}
		if author == "" {
			author = entry.Author
		}
		if entry.Style != nil {
			entryScale = entry.Style.FontScale
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}

	scale := defaultFontScale
	switch {
	case req.FontScale > 0:
		scale = req.FontScale
	case entryScale != nil && *entryScale > 0:
		scale = *entryScale
	}

	return &Presentation{
		LyricsID:  req.LyricsID,
		Title:     title,
		Author:    author,
		Lines:     chordpro.ExtractLines(text),
		FontScale: clamp(scale, s.minScale, s.maxScale),
	}, nil
}
