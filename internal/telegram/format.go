package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_factcheck/internal/factcheck"
)

const maxMessageLen = 4096

const helpText = `YouTube Fact-Checker

Send a YouTube link, or use:
/check <url> - extract the factual claims made in a video
/help - show this message`

// extractURL returns the first YouTube link in text, or "".
func extractURL(text string) string {
	for _, f := range strings.Fields(text) {
		if strings.Contains(f, "youtube.com/") || strings.Contains(f, "youtu.be/") {
			return strings.Trim(f, "<>()[]\"'")
		}
	}
	return ""
}

func statusText(st factcheck.State) string {
	if msg := st.ErrorText(); msg != "" {
		return msg
	}
	switch n := len(st.Claims); n {
	case 0:
		return "No claims extracted."
	case 1:
		return "Extracted 1 claim."
	default:
		return fmt.Sprintf("Extracted %d claims.", n)
	}
}

func formatClaims(claims []string) string {
	var b strings.Builder
	b.WriteString("Extracted Claims\n")
	for i, c := range claims {
		fmt.Fprintf(&b, "\n%d. %s", i+1, strings.Join(strings.Fields(c), " "))
	}
	return b.String()
}

// splitMessage cuts text into chunks of at most limit bytes, breaking on
// newlines where possible.
func splitMessage(text string, limit int) []string {
	var out []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		out = append(out, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}
