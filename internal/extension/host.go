package extension

import "fmt"

// Point is a position in a document as line and column, both
// zero-based. The column counts runes.
type Point struct {
	Line int
	Col  int
}

// String returns the point as line:col.
func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Host is the editor surface a feature runs against. Queries and edits
// apply to the active document. All methods are synchronous since
// documents live in memory.
type Host interface {
	// ActiveText returns the full text of the active document, or
	// false when no document is active.
	ActiveText() (string, bool)

	// Cursor returns the cursor position in the active document, or
	// false when no document is active.
	Cursor() (Point, bool)

	// SetCursor moves the cursor in the active document.
	SetCursor(p Point) error

	// LineTextUpTo returns the text of the line containing p, from the
	// start of the line up to but not including p.
	LineTextUpTo(p Point) (string, error)

	// ReplaceRange replaces the half-open range [start, end) with text.
	ReplaceRange(start, end Point, text string) error

	// NewStatusDisplay allocates a status bar display. The caller owns
	// it and must call Remove when done.
	NewStatusDisplay() StatusDisplay
}

// StatusDisplay is one item in the status bar.
type StatusDisplay interface {
	// Show makes the display visible.
	Show()

	// Hide makes the display invisible without releasing it.
	Hide()

	// SetText replaces the display text.
	SetText(text string)

	// Remove releases the display. No other method may be called
	// afterwards.
	Remove()
}
