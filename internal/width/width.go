// Package width measures how many terminal columns a string occupies.
//
// Emoji and East Asian wide or fullwidth characters count as two columns,
// control and combining characters as zero, everything else as one. ANSI
// escape sequences are not printed text and are ignored.
package width

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// String returns the display width of s.
func String(s string) int {
	if isPrintableASCII(s) {
		return len(s)
	}
	return runewidth.StringWidth(StripANSI(s))
}

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// Truncate shortens s to at most w columns, ending it with "..." when it
// had to be cut and there is room for the ellipsis.
func Truncate(s string, w int) string {
	if w <= 0 || String(s) <= w {
		return s
	}
	if w <= 3 {
		return runewidth.Truncate(s, w, "")
	}
	return runewidth.Truncate(s, w, "...")
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
