// Package security provides join-token and short-code generation plus
// constant-time token comparison for the session lifecycle.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// shortCodeAlphabet excludes confusable characters (0/O, 1/I) so codes can be
// read aloud and typed from a projection screen.
const shortCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ShortCodeLength is the fixed length of session short codes.
const ShortCodeLength = 6

// GenerateJoinToken returns a 32-character uppercase hex token from 16 bytes
// of crypto/rand. One token is issued per role per session and never reused.
func GenerateJoinToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// GenerateShortCode returns a random ShortCodeLength-character code from the
// confusable-free alphabet. Uniqueness is the caller's concern.
func GenerateShortCode() (string, error) {
	buf := make([]byte, ShortCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, ShortCodeLength)
	for i, b := range buf {
		out[i] = shortCodeAlphabet[int(b)%len(shortCodeAlphabet)]
	}
	return string(out), nil
}

// TokenEqual performs constant-time comparison of two tokens.
// Returns true only on an exact, case-sensitive match.
func TokenEqual(provided, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(stored)) == 1
}
