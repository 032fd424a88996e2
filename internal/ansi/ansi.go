// Package ansi provides the raw terminal escape sequences compass emits
// outside of lipgloss styling, and a helper to remove them.
package ansi

import "regexp"

// Screen control codes.
const (
	// ClearScreen erases the whole display.
	ClearScreen = "\033[2J"
	// CursorHome moves the cursor to the top-left corner.
	CursorHome = "\033[H"
)

// sgrPattern matches SGR (Select Graphic Rendition) and erase/cursor sequences.
var sgrPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// Strip removes ANSI escape sequences from s.
func Strip(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}
