// Package passage resolves scripture references against normalized-JSON
// bible translations loaded from disk.
package passage

// Verse is one resolved verse with its display book name.
type Verse struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

// Attribution carries licensing text a translation may require displays to show.
type Attribution struct {
	Required bool   `json:"required"`
	Text     string `json:"text,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Passage is a resolved reference: the rebuilt reference label, the verses in
// range order, and the translation's attribution and cache policy.
type Passage struct {
	Reference   string       `json:"reference"`
	Translation string       `json:"translation"`
	Verses      []Verse      `json:"verses"`
	Attribution *Attribution `json:"attribution,omitempty"`
	CachePolicy string       `json:"cachePolicy"`
}
