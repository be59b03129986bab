package passage

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// VerseRange is an inclusive verse span within one chapter.
type VerseRange struct {
	Start int
	End   int
}

// ParsedReference is the structured form of a human-entered reference like
// "John 3:16-18" or "1 Joh 4". An empty Ranges slice means the whole chapter.
type ParsedReference struct {
	BookToken string
	Chapter   int
	Ranges    []VerseRange
}

var tokenNormalizer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeToken folds a book name or alias to a comparison key: accents are
// stripped, case is folded, and everything but letters and digits is dropped.
// "1. Johannes" and "1joh" normalize to keys that share a prefix relation.
func NormalizeToken(token string) string {
	stripped, _, err := transform.String(tokenNormalizer, token)
	if err != nil {
		stripped = token
	}
	var b strings.Builder
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseReference splits a reference into book token, chapter, and verse
// ranges. It accepts "Book C", "Book C:V", "Book C:V-W" and comma or
// semicolon separated range lists; en and em dashes are treated as hyphens.
// It returns nil when the input cannot be parsed.
func ParseReference(input string) *ParsedReference {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	trimmed = strings.NewReplacer("–", "-", "—", "-").Replace(trimmed)

	// The book token runs up to the digit that starts the chapter number.
	// Leading digits belong to the book ("1 John", "2 Kor").
	splitAt := -1
	chars := []rune(trimmed)
	for i := 0; i < len(chars); i++ {
		if !unicode.IsDigit(chars[i]) {
			continue
		}
		if i == 0 {
			// Skip the book's ordinal prefix and keep scanning.
			for i < len(chars) && unicode.IsDigit(chars[i]) {
				i++
			}
			continue
		}
		splitAt = i
		break
	}
	if splitAt <= 0 {
		return nil
	}

	bookToken := strings.TrimSpace(string(chars[:splitAt]))
	rest := strings.TrimSpace(string(chars[splitAt:]))
	if bookToken == "" || rest == "" || !containsLetter(bookToken) {
		return nil
	}

	chapterPart := rest
	versePart := ""
	hasVerseSep := false
	if idx := strings.IndexAny(rest, ":."); idx >= 0 {
		hasVerseSep = true
		chapterPart = strings.TrimSpace(rest[:idx])
		versePart = strings.TrimSpace(rest[idx+1:])
	}
	chapter, err := strconv.Atoi(chapterPart)
	if err != nil || chapter < 1 {
		return nil
	}

	parsed := &ParsedReference{BookToken: bookToken, Chapter: chapter}
	if !hasVerseSep {
		return parsed
	}
	if versePart == "" {
		return nil
	}

	for _, segment := range strings.FieldsFunc(versePart, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		r, ok := parseRange(segment)
		if !ok {
			return nil
		}
		parsed.Ranges = append(parsed.Ranges, r)
	}
	if len(parsed.Ranges) == 0 {
		return nil
	}
	return parsed
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func parseRange(segment string) (VerseRange, bool) {
	start, end, found := strings.Cut(segment, "-")
	from, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil || from < 1 {
		return VerseRange{}, false
	}
	if !found {
		return VerseRange{Start: from, End: from}, true
	}
	to, err := strconv.Atoi(strings.TrimSpace(end))
	if err != nil || to < from {
		return VerseRange{}, false
	}
	return VerseRange{Start: from, End: to}, true
}
