package ui

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// StatusBar renders a single reversed row with file information on the
// left and indicator items on the right.
type StatusBar struct {
	mu    sync.Mutex
	left  string
	items []*Item
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetLeft sets the left-aligned text, typically the file name and
// cursor position.
func (b *StatusBar) SetLeft(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.left = text
}

// NewItem appends an indicator slot on the right side of the bar. New
// items start hidden.
func (b *StatusBar) NewItem() *Item {
	b.mu.Lock()
	defer b.mu.Unlock()

	it := &Item{bar: b}
	b.items = append(b.items, it)
	return it
}

// RightText returns the visible items joined for display.
func (b *StatusBar) RightText() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rightTextLocked()
}

func (b *StatusBar) rightTextLocked() string {
	var parts []string
	for _, it := range b.items {
		if it.visible && it.text != "" {
			parts = append(parts, it.text)
		}
	}
	return strings.Join(parts, " | ")
}

// Render draws the bar on the given row.
func (b *StatusBar) Render(s *Screen, row, width int) {
	b.mu.Lock()
	left := b.left
	right := b.rightTextLocked()
	b.mu.Unlock()

	style := tcell.StyleDefault.Reverse(true)
	s.FillRow(row, width, style)

	x := s.SetText(1, row, left, style)

	start := width - runewidth.StringWidth(right) - 1
	if right != "" && start > x+1 {
		s.SetText(start, row, right, style)
	}
}

// Item is one indicator slot on the status bar. The zero of visible is
// hidden so an item shows nothing until Show is called.
type Item struct {
	bar     *StatusBar
	text    string
	visible bool
	removed bool
}

// Show makes the item visible.
func (it *Item) Show() {
	it.bar.mu.Lock()
	defer it.bar.mu.Unlock()
	if !it.removed {
		it.visible = true
	}
}

// Hide hides the item without discarding its text.
func (it *Item) Hide() {
	it.bar.mu.Lock()
	defer it.bar.mu.Unlock()
	it.visible = false
}

// SetText replaces the item text.
func (it *Item) SetText(text string) {
	it.bar.mu.Lock()
	defer it.bar.mu.Unlock()
	if !it.removed {
		it.text = text
	}
}

// Remove detaches the item from the bar. Further calls on the item are
// no-ops.
func (it *Item) Remove() {
	it.bar.mu.Lock()
	defer it.bar.mu.Unlock()

	if it.removed {
		return
	}
	it.removed = true
	it.visible = false
	for i, other := range it.bar.items {
		if other == it {
			it.bar.items = append(it.bar.items[:i], it.bar.items[i+1:]...)
			break
		}
	}
}
