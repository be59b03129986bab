// Package chordpro extracts display lines from ChordPro song sources.
package chordpro

import (
	"regexp"
	"strings"
)

// CommentSentinel prefixes extracted {comment: ...} lines so displays can
// style stage directions differently from sung lines.
const CommentSentinel = "__COMMENT__"

var (
	directiveToken   = regexp.MustCompile(`\{[^}]*\}`)
	chordToken       = regexp.MustCompile(`\[[^\]]*\]`)
	commentDirective = regexp.MustCompile(`(?i)\{(?:comment|c):([^}]*)\}`)
)

// ExtractLines turns ChordPro source into the plain lines a display renders.
// {directive} and chord tokens like [G] are stripped wherever they appear in
// a line, bar separators become spaces, and # comment lines and lines left
// blank by stripping are dropped. A line whose only content was a
// {comment: ...} directive survives as a sentinel-prefixed line.
func ExtractLines(source string) []string {
	var out []string
	for _, raw := range strings.Split(source, "\n") {
		if strings.HasPrefix(strings.TrimSpace(raw), "#") {
			continue
		}

		comment := ""
		if m := commentDirective.FindStringSubmatch(raw); m != nil {
			comment = strings.TrimSpace(m[1])
		}

		line := directiveToken.ReplaceAllString(raw, "")
		line = chordToken.ReplaceAllString(line, "")
		line = strings.ReplaceAll(line, "|", " ")
		line = strings.Join(strings.Fields(line), " ")
		switch {
		case line != "":
			out = append(out, line)
		case comment != "":
			out = append(out, CommentSentinel+" "+comment)
		}
	}
	return out
}
