package passage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Source names one translation file to serve: the public translation code and
// the normalized-JSON file (relative to the content directory or absolute).
type Source struct {
	Code string
	File string
}

// document is the normalized translation file layout.
type document struct {
	Translation string        `json:"translation"`
	Language    string        `json:"language"`
	CachePolicy string        `json:"cachePolicy"`
	Attribution *Attribution  `json:"attribution"`
	Books       []bookSection `json:"books"`
}

type bookSection struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Aliases  []string         `json:"aliases"`
	Chapters []chapterSection `json:"chapters"`
}

type chapterSection struct {
	Number int            `json:"number"`
	Verses []verseSection `json:"verses"`
}

type verseSection struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

type translationEntry struct {
	code string
	path string

	once    sync.Once
	doc     *document
	books   map[string]*bookSection // normalized alias -> book
	loadErr error
}

// FileProvider serves passages from normalized-JSON translation files.
// Files are parsed lazily on first request and kept in memory afterwards.
type FileProvider struct {
	entries map[string]*translationEntry // lowercased translation code
}

// NewFileProvider registers one entry per source. Files are not opened here;
// a missing file surfaces as an error on the first passage request for that
// translation.
func NewFileProvider(contentDir string, sources []Source) *FileProvider {
	p := &FileProvider{entries: make(map[string]*translationEntry, len(sources))}
	for _, src := range sources {
		path := src.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(contentDir, path)
		}
		p.entries[strings.ToLower(src.Code)] = &translationEntry{code: src.Code, path: path}
	}
	return p
}

// Codes lists the registered translation codes, sorted.
func (p *FileProvider) Codes() []string {
	out := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e.code)
	}
	sort.Strings(out)
	return out
}

// CanHandle reports whether a translation code is registered. Codes compare
// case-insensitively.
func (p *FileProvider) CanHandle(translation string) bool {
	_, ok := p.entries[strings.ToLower(translation)]
	return ok
}

// GetPassage resolves a reference within the translation. It returns
// (nil, nil) when the translation, book, chapter, or every requested verse is
// unknown; the caller decides how a miss is surfaced.
func (p *FileProvider) GetPassage(ctx context.Context, translation, reference string) (*Passage, error) {
	entry, ok := p.entries[strings.ToLower(translation)]
	if !ok {
		return nil, nil
	}
	if err := entry.load(); err != nil {
		return nil, err
	}

	parsed := ParseReference(reference)
	if parsed == nil {
		return nil, nil
	}
	book := entry.lookupBook(parsed.BookToken)
	if book == nil {
		return nil, nil
	}
	chapter := findChapter(book, parsed.Chapter)
	if chapter == nil {
		return nil, nil
	}

	verses := selectVerses(book.Title, parsed, chapter)
	if len(verses) == 0 {
		return nil, nil
	}

	label := verses
	if len(parsed.Ranges) == 0 {
		// Whole chapter reads "John 3", not an enumerated verse run.
		label = nil
	}
	return &Passage{
		Reference:   buildReference(book.Title, parsed.Chapter, label),
		Translation: entry.doc.Translation,
		Verses:      verses,
		Attribution: entry.doc.Attribution,
		CachePolicy: entry.doc.CachePolicy,
	}, nil
}

func (e *translationEntry) load() error {
	e.once.Do(func() {
		raw, err := os.ReadFile(e.path)
		if err != nil {
			e.loadErr = fmt.Errorf("translation %s: %w", e.code, err)
			return
		}
		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			e.loadErr = fmt.Errorf("translation %s: parse %s: %w", e.code, e.path, err)
			return
		}
		if doc.Translation == "" {
			doc.Translation = e.code
		}
		e.doc = &doc
		e.books = make(map[string]*bookSection)
		for i := range doc.Books {
			book := &doc.Books[i]
			for _, alias := range append([]string{book.ID, book.Title}, book.Aliases...) {
				if key := NormalizeToken(alias); key != "" {
					e.books[key] = book
				}
			}
		}
	})
	return e.loadErr
}

// lookupBook matches the token against the alias index, first exactly, then
// as an unambiguous prefix so "Joh 3" finds Johannes but "J 3" stays unknown
// when several books start with j.
func (e *translationEntry) lookupBook(token string) *bookSection {
	key := NormalizeToken(token)
	if key == "" {
		return nil
	}
	if book, ok := e.books[key]; ok {
		return book
	}
	var match *bookSection
	for alias, book := range e.books {
		if !strings.HasPrefix(alias, key) {
			continue
		}
		if match != nil && match != book {
			return nil
		}
		match = book
	}
	return match
}

func findChapter(book *bookSection, number int) *chapterSection {
	for i := range book.Chapters {
		if book.Chapters[i].Number == number {
			return &book.Chapters[i]
		}
	}
	return nil
}

func selectVerses(bookTitle string, parsed *ParsedReference, chapter *chapterSection) []Verse {
	include := func(n int) bool {
		if len(parsed.Ranges) == 0 {
			return true
		}
		for _, r := range parsed.Ranges {
			if n >= r.Start && n <= r.End {
				return true
			}
		}
		return false
	}
	var out []Verse
	for _, v := range chapter.Verses {
		if !include(v.Number) {
			continue
		}
		out = append(out, Verse{
			Book:    bookTitle,
			Chapter: parsed.Chapter,
			Verse:   v.Number,
			Text:    v.Text,
		})
	}
	return out
}

// buildReference rebuilds a canonical label from the verses actually found,
// collapsing consecutive runs: "John 3:16-18" or "John 3" for a full chapter.
func buildReference(bookTitle string, chapter int, verses []Verse) string {
	var b strings.Builder
	b.WriteString(bookTitle)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(chapter))
	if len(verses) == 0 {
		return b.String()
	}
	b.WriteByte(':')
	runStart := verses[0].Verse
	prev := verses[0].Verse
	first := true
	flush := func() {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(strconv.Itoa(runStart))
		if prev != runStart {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(prev))
		}
	}
	for _, v := range verses[1:] {
		if v.Verse == prev+1 {
			prev = v.Verse
			continue
		}
		flush()
		runStart = v.Verse
		prev = v.Verse
	}
	flush()
	return b.String()
}
