// Package domain holds the lyrics catalog model.
package domain

import "time"

// Style carries per-song display overrides. Fields are pointers so an unset
// override falls through to the presentation defaults.
type Style struct {
	FontScale *float64 `json:"fontScale,omitempty"`
}

// Entry is one stored song: title, author, and the raw ChordPro source.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	ChordPro  string    `json:"chordPro"`
	Style     *Style    `json:"style,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the listing row for the catalog, without the song body.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
