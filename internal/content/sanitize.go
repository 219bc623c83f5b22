package content

import (
	"regexp"
	"strings"
)

var (
	controlChars  = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	scriptBlocks  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script\s*>`)
	dangerousTags = regexp.MustCompile(`(?i)</?(script|iframe|object|embed|link|meta)\b[^>]*>`)
)

// cleanLine turns control characters into spaces and collapses whitespace.
// Used for single-line fields such as titles and author names.
func cleanLine(s *string) string {
	if s == nil {
		return ""
	}
	cleaned := controlChars.ReplaceAllString(*s, " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// cleanBody strips executable markup from free text and normalizes line endings.
// Other formatting is left alone.
func cleanBody(s *string) string {
	if s == nil {
		return ""
	}
	body := scriptBlocks.ReplaceAllString(*s, "")
	body = dangerousTags.ReplaceAllString(body, "")
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.TrimSpace(body)
}
