package geoquiz

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// JoinCodeAlphabet has 32 symbols and omits I, O, 0 and 1.
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const JoinCodeLength = 6

// NewJoinCode returns a random join code. 256 is a multiple of 32, so
// masking each byte keeps the distribution uniform.
func NewJoinCode() (string, error) {
	b := make([]byte, JoinCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i := range b {
		b[i] = JoinCodeAlphabet[b[i]&31]
	}
	return string(b), nil
}

// NormalizeJoinCode upper-cases and trims user input.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidJoinCode reports whether code could have been produced by NewJoinCode.
func ValidJoinCode(code string) bool {
	if len(code) != JoinCodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(JoinCodeAlphabet, c) {
			return false
		}
	}
	return true
}
