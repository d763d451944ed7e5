package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/snipline/snipline/internal/editor"
)

// View renders a window onto a buffer and keeps the cursor visible by
// scrolling vertically.
type View struct {
	tabWidth int
	scroll   int
}

// NewView creates a view with the given tab width.
func NewView(tabWidth int) *View {
	if tabWidth < 1 {
		tabWidth = 4
	}
	return &View{tabWidth: tabWidth}
}

// SetTabWidth changes how wide tab stops render.
func (v *View) SetTabWidth(width int) {
	if width >= 1 {
		v.tabWidth = width
	}
}

// Scroll returns the first visible buffer line.
func (v *View) Scroll() int {
	return v.scroll
}

// Render draws the buffer into a width by height window at the top of
// the screen and returns the screen coordinates of the cursor.
func (v *View) Render(s *Screen, buf *editor.Buffer, cursor editor.Point, width, height int) (int, int) {
	v.ensureVisible(cursor.Line, height)

	total := buf.LineCount()
	for row := 0; row < height; row++ {
		idx := v.scroll + row
		if idx >= total {
			break
		}
		line, err := buf.Line(idx)
		if err != nil {
			break
		}
		v.renderLine(s, row, line, width)
	}

	cx := 0
	if line, err := buf.Line(cursor.Line); err == nil {
		cx = v.CellColumn(line, cursor.Col)
	}
	return cx, cursor.Line - v.scroll
}

func (v *View) ensureVisible(line, height int) {
	if height <= 0 {
		return
	}
	if line < v.scroll {
		v.scroll = line
	}
	if line >= v.scroll+height {
		v.scroll = line - height + 1
	}
}

func (v *View) renderLine(s *Screen, row int, line string, width int) {
	x := 0
	for _, r := range line {
		if x >= width {
			return
		}
		if r == '\t' {
			// The row is already blank, advancing is enough.
			x += v.tabWidth - x%v.tabWidth
			continue
		}
		s.SetCell(x, row, r, tcell.StyleDefault)
		x += cellWidth(r)
	}
}

// CellColumn converts a rune column in line to a screen column,
// accounting for tab stops and wide runes.
func (v *View) CellColumn(line string, col int) int {
	x := 0
	i := 0
	for _, r := range line {
		if i >= col {
			break
		}
		if r == '\t' {
			x += v.tabWidth - x%v.tabWidth
		} else {
			x += cellWidth(r)
		}
		i++
	}
	return x
}

func cellWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w < 1 {
		w = 1
	}
	return w
}
