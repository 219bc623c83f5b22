// Package slug turns titles into URL-safe identifiers.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength bounds a slug in bytes so it fits the slug columns with room to spare
const MaxLength = 200

// Letters that do not decompose into base + combining mark.
var replacer = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae", "Æ", "ae",
	"œ", "oe", "Œ", "oe",
	"ø", "o", "Ø", "o",
	"đ", "d", "Đ", "d",
	"ł", "l", "Ł", "l",
	"ı", "i",
	"&", " and ",
)

// Make returns a lowercase, hyphen separated token containing only [a-z0-9-].
// It is deterministic and idempotent: Make(Make(s)) == Make(s).
// Slugs longer than MaxLength are cut at the last hyphen that fits.
// Uniqueness is not its concern; callers persist slugs behind a unique index.
func Make(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, replacer.Replace(title))
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return truncate(b.String())
}

func truncate(s string) string {
	if len(s) <= MaxLength {
		return s
	}
	cut := s[:MaxLength]
	if s[MaxLength] != '-' {
		if i := strings.LastIndexByte(cut, '-'); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, "-")
}
