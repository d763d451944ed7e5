package app

import (
	"testing"

	"github.com/snipline/snipline/internal/editor"
	"github.com/snipline/snipline/internal/ui"
)

// setupText replaces the active document content and places the cursor.
func setupText(t *testing.T, app *Application, text string, cur editor.Point) *Document {
	t.Helper()
	doc := app.Documents().Active()
	if doc == nil {
		t.Fatal("expected an active document")
	}
	doc.Buffer.SetText(text)
	doc.SetCursor(cur)
	return doc
}

func TestMoveCursor(t *testing.T) {
	tests := []struct {
		name string
		text string
		from editor.Point
		key  ui.Key
		want editor.Point
	}{
		{"left", "abc", editor.Point{Col: 2}, ui.KeyLeft, editor.Point{Col: 1}},
		{"left wraps to previous line", "ab\ncd", editor.Point{Line: 1}, ui.KeyLeft, editor.Point{Line: 0, Col: 2}},
		{"left at origin stays", "ab", editor.Point{}, ui.KeyLeft, editor.Point{}},
		{"right", "abc", editor.Point{Col: 1}, ui.KeyRight, editor.Point{Col: 2}},
		{"right wraps to next line", "ab\ncd", editor.Point{Col: 2}, ui.KeyRight, editor.Point{Line: 1, Col: 0}},
		{"right at end stays", "ab", editor.Point{Col: 2}, ui.KeyRight, editor.Point{Col: 2}},
		{"up clamps column", "abcdef\nx", editor.Point{Line: 1, Col: 1}, ui.KeyUp, editor.Point{Line: 0, Col: 1}},
		{"down clamps column", "abcdef\nx", editor.Point{Line: 0, Col: 5}, ui.KeyDown, editor.Point{Line: 1, Col: 1}},
		{"home", "abc", editor.Point{Col: 2}, ui.KeyHome, editor.Point{}},
		{"end", "abc", editor.Point{Col: 1}, ui.KeyEnd, editor.Point{Col: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, Options{})
			doc := setupText(t, app, tt.text, tt.from)

			press(app, tt.key)
			if got := doc.Cursor(); got != tt.want {
				t.Errorf("expected cursor %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPageMovement(t *testing.T) {
	app := newTestApp(t, Options{})
	doc := setupText(t, app, "0\n1\n2\n3\n4\n5\n6\n7\n8\n9", editor.Point{})

	press(app, ui.KeyPageDown)
	if got := doc.Cursor(); got.Line != 9 {
		t.Errorf("expected page down to clamp at last line, got %v", got)
	}

	press(app, ui.KeyPageUp)
	if got := doc.Cursor(); got.Line != 0 {
		t.Errorf("expected page up back to top, got %v", got)
	}
}

func TestDeleteBackward(t *testing.T) {
	app := newTestApp(t, Options{})
	doc := setupText(t, app, "ab\ncd", editor.Point{Line: 1, Col: 1})

	press(app, ui.KeyBackspace)
	if got := doc.Buffer.Text(); got != "ab\nd" {
		t.Errorf("expected rune removed, got %q", got)
	}

	// At column zero backspace joins with the previous line.
	press(app, ui.KeyBackspace)
	if got := doc.Buffer.Text(); got != "abd" {
		t.Errorf("expected lines joined, got %q", got)
	}
	if got := doc.Cursor(); got != (editor.Point{Line: 0, Col: 2}) {
		t.Errorf("expected cursor at join point, got %v", got)
	}

	// At the very start backspace is a no-op.
	doc.SetCursor(editor.Point{})
	press(app, ui.KeyBackspace)
	if got := doc.Buffer.Text(); got != "abd" {
		t.Errorf("expected no change at origin, got %q", got)
	}
}

func TestDeleteForward(t *testing.T) {
	app := newTestApp(t, Options{})
	doc := setupText(t, app, "ab\ncd", editor.Point{Line: 0, Col: 2})

	press(app, ui.KeyDelete)
	if got := doc.Buffer.Text(); got != "abcd" {
		t.Errorf("expected next line joined, got %q", got)
	}

	press(app, ui.KeyDelete)
	if got := doc.Buffer.Text(); got != "abd" {
		t.Errorf("expected rune removed, got %q", got)
	}

	doc.SetCursor(editor.Point{Line: 0, Col: 3})
	press(app, ui.KeyDelete)
	if got := doc.Buffer.Text(); got != "abd" {
		t.Errorf("expected no change at end of buffer, got %q", got)
	}
}

func TestEnterSplitsLine(t *testing.T) {
	app := newTestApp(t, Options{})
	doc := setupText(t, app, "abcd", editor.Point{Col: 2})

	press(app, ui.KeyEnter)
	if got := doc.Buffer.Text(); got != "ab\ncd" {
		t.Errorf("expected line split, got %q", got)
	}
	if got := doc.Cursor(); got != (editor.Point{Line: 1, Col: 0}) {
		t.Errorf("expected cursor at start of new line, got %v", got)
	}
}

func TestUndoRedoTyping(t *testing.T) {
	app := newTestApp(t, Options{})
	doc := app.Documents().Active()

	typeString(t, app, "ab")
	press(app, ui.KeyCtrlZ)
	if got := doc.Buffer.Text(); got != "a" {
		t.Errorf("expected one keystroke undone, got %q", got)
	}

	press(app, ui.KeyCtrlY)
	if got := doc.Buffer.Text(); got != "ab" {
		t.Errorf("expected keystroke redone, got %q", got)
	}
}

func TestUndoEmptyHistory(t *testing.T) {
	app := newTestApp(t, Options{})

	press(app, ui.KeyCtrlZ)
	if got := currentNotice(app); got != "nothing to undo" {
		t.Errorf("expected nothing-to-undo notice, got %q", got)
	}
}
