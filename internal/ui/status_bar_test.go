package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestRenderStatusContents(t *testing.T) {
	out := RenderStatus(60, 12, 34, "==sxA78? a")

	if !strings.Contains(out, "Score: 12 Steps: 34") {
		t.Errorf("Expected counters in status line, got %q", out)
	}
	if !strings.Contains(out, "==sxA78? a") {
		t.Errorf("Expected rule header in status line, got %q", out)
	}
}

func TestRenderStatusTruncatesByDisplayWidth(t *testing.T) {
	// Wide glyphs occupy two columns each.
	header := strings.Repeat("日", 40)
	out := RenderStatus(20, 0, 0, header)

	for _, line := range strings.Split(out, "\n") {
		if w := runewidth.StringWidth(strip_ansi(line)); w > 20 {
			t.Errorf("Expected status within width, got %d columns", w)
		}
	}
}

func TestRenderHelpTruncates(t *testing.T) {
	out := RenderHelp(10, "a very long help string that cannot fit")
	if w := runewidth.StringWidth(strip_ansi(out)); w > 9 {
		t.Errorf("Expected help truncated to width, got %d columns", w)
	}
}

// strip_ansi removes escape sequences so width checks see only text.
func strip_ansi(s string) string {
	var sb strings.Builder
	in_escape := false
	for _, r := range s {
		switch {
		case in_escape:
			if r == 'm' {
				in_escape = false
			}
		case r == '\x1b':
			in_escape = true
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
