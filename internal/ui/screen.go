// Package ui renders the editor to a terminal through tcell and
// translates terminal input into editor events.
package ui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Screen wraps a tcell screen with the drawing operations the editor
// needs.
type Screen struct {
	mu sync.Mutex
	ts tcell.Screen
}

// NewScreen allocates a terminal screen. Init must be called before
// any drawing.
func NewScreen() (*Screen, error) {
	ts, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Screen{ts: ts}, nil
}

// WrapScreen adopts an existing tcell screen, typically tcell's
// simulation screen in tests.
func WrapScreen(ts tcell.Screen) *Screen {
	return &Screen{ts: ts}
}

// Init puts the terminal into raw mode.
func (s *Screen) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ts.Init()
}

// Fini restores the terminal.
func (s *Screen) Fini() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ts.Fini()
}

// Size returns the terminal dimensions.
func (s *Screen) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ts.Size()
}

// Clear erases the pending frame.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ts.Clear()
}

// Show flushes the pending frame to the terminal.
func (s *Screen) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ts.Show()
}

// SetCell draws a single rune.
func (s *Screen) SetCell(x, y int, r rune, style tcell.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ts.SetContent(x, y, r, nil, style)
}

// SetText draws a string and returns the column after it.
func (s *Screen) SetText(x, y int, text string, style tcell.Style) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range text {
		s.ts.SetContent(x, y, r, nil, style)
		x += cellWidth(r)
	}
	return x
}

// FillRow fills a row with spaces.
func (s *Screen) FillRow(y, width int, style tcell.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for x := 0; x < width; x++ {
		s.ts.SetContent(x, y, ' ', nil, style)
	}
}

// ShowCursor places the hardware cursor.
func (s *Screen) ShowCursor(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ts.ShowCursor(x, y)
}

// HideCursor hides the hardware cursor.
func (s *Screen) HideCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ts.HideCursor()
}

// PollEvent blocks until the next input event.
func (s *Screen) PollEvent() Event {
	return convertEvent(s.ts.PollEvent())
}

// Post queues a function to run on the event loop goroutine. This is
// how background goroutines hand work to the single-threaded editor.
func (s *Screen) Post(fn func()) {
	ev := &eventFunc{fn: fn}
	ev.SetEventNow()
	_ = s.ts.PostEvent(ev) // best effort, queue may be full
}
