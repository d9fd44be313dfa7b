package utils

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases value, strips accents and collapses every run of
// non-alphanumeric characters into a single dash.
func Slugify(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ReadingTime estimates minutes to read text at 200 words per minute, rounded to the
// nearest minute and never less than one.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := (words + 100) / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}

// TimestampedName builds YYYYMMDD_HHMMSS_<8 hex> for uploaded files.
func TimestampedName(now time.Time) string {
	return now.UTC().Format("20060102_150405") + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
