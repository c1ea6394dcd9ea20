package factcheck

import (
	"fmt"
	"strings"
)

// Render formats a state as markdown: the error line, the thumbnail, then
// the claims list. Empty sections are omitted.
func Render(s State) string {
	var b strings.Builder
	if s.Loading {
		b.WriteString("_Processing..._\n")
	}
	if msg := s.ErrorText(); msg != "" {
		fmt.Fprintf(&b, "**Error:** %s\n", msg)
	}
	if thumb := s.Thumbnail(); thumb != "" {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "![Video thumbnail](%s)\n", thumb)
	}
	if len(s.Claims) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("## Extracted Claims\n\n")
		for _, c := range s.Claims {
			fmt.Fprintf(&b, "- %s\n", oneLine(c))
		}
	}
	if b.Len() == 0 {
		return "No claims extracted."
	}
	return strings.TrimRight(b.String(), "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
