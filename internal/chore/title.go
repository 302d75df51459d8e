package chore

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle trims surrounding whitespace and applies Unicode NFC so
// that visually identical titles share one natural key.
func NormalizeTitle(title string) string {
	return norm.NFC.String(strings.TrimSpace(title))
}
