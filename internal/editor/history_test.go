package editor

import (
	"errors"
	"fmt"
	"testing"
)

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory(0)

	before := "hello"
	after := "hello world"
	h.Record(before, after, Point{Line: 0, Col: 5}, Point{Line: 0, Col: 11})

	if !h.CanUndo() {
		t.Fatal("expected undo to be available")
	}

	text, cursor, err := h.Undo(after)
	if err != nil {
		t.Fatalf("failed to undo: %v", err)
	}
	if text != before {
		t.Errorf("expected %q, got %q", before, text)
	}
	if cursor != (Point{Line: 0, Col: 5}) {
		t.Errorf("expected cursor 0:5, got %v", cursor)
	}

	if !h.CanRedo() {
		t.Fatal("expected redo to be available")
	}

	text, cursor, err = h.Redo(text)
	if err != nil {
		t.Fatalf("failed to redo: %v", err)
	}
	if text != after {
		t.Errorf("expected %q, got %q", after, text)
	}
	if cursor != (Point{Line: 0, Col: 11}) {
		t.Errorf("expected cursor 0:11, got %v", cursor)
	}
}

func TestHistoryEmptyStacks(t *testing.T) {
	h := NewHistory(0)

	if _, _, err := h.Undo("x"); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
	if _, _, err := h.Redo("x"); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestHistoryNoopEditIgnored(t *testing.T) {
	h := NewHistory(0)

	h.Record("same", "same", Point{}, Point{})
	if h.CanUndo() {
		t.Error("expected identical texts to record nothing")
	}
}

func TestHistoryRecordClearsRedo(t *testing.T) {
	h := NewHistory(0)

	h.Record("a", "ab", Point{Col: 1}, Point{Col: 2})
	text, _, err := h.Undo("ab")
	if err != nil {
		t.Fatalf("failed to undo: %v", err)
	}
	if text != "a" {
		t.Fatalf("expected a, got %q", text)
	}

	h.Record("a", "ax", Point{Col: 1}, Point{Col: 2})
	if h.CanRedo() {
		t.Error("expected new edit to clear the redo stack")
	}
}

func TestHistoryMultipleSteps(t *testing.T) {
	h := NewHistory(0)

	texts := []string{"", "a", "ab", "abc"}
	for i := 1; i < len(texts); i++ {
		h.Record(texts[i-1], texts[i], Point{Col: i - 1}, Point{Col: i})
	}

	current := texts[len(texts)-1]
	for i := len(texts) - 2; i >= 0; i-- {
		var err error
		current, _, err = h.Undo(current)
		if err != nil {
			t.Fatalf("undo step %d failed: %v", i, err)
		}
		if current != texts[i] {
			t.Errorf("undo step %d: expected %q, got %q", i, texts[i], current)
		}
	}

	for i := 1; i < len(texts); i++ {
		var err error
		current, _, err = h.Redo(current)
		if err != nil {
			t.Fatalf("redo step %d failed: %v", i, err)
		}
		if current != texts[i] {
			t.Errorf("redo step %d: expected %q, got %q", i, texts[i], current)
		}
	}
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory(2)

	texts := []string{"v0", "v1", "v2", "v3"}
	for i := 1; i < len(texts); i++ {
		h.Record(texts[i-1], texts[i], Point{}, Point{})
	}

	current := "v3"
	for i := 0; i < 2; i++ {
		var err error
		current, _, err = h.Undo(current)
		if err != nil {
			t.Fatalf("undo %d failed: %v", i, err)
		}
	}
	if current != "v1" {
		t.Errorf("expected v1 after two undos, got %q", current)
	}
	if h.CanUndo() {
		t.Error("expected the oldest entry to be dropped by the limit")
	}
}

func TestHistoryMultilineEdit(t *testing.T) {
	h := NewHistory(0)

	before := "first line\nsecond line"
	after := "first line\n```python\n\n```\nsecond line"
	h.Record(before, after, Point{Line: 1, Col: 0}, Point{Line: 2, Col: 0})

	text, _, err := h.Undo(after)
	if err != nil {
		t.Fatalf("failed to undo: %v", err)
	}
	if text != before {
		t.Errorf("expected %q, got %q", before, text)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(0)

	h.Record("a", "ab", Point{}, Point{})
	h.Clear()

	if h.CanUndo() || h.CanRedo() {
		t.Error("expected clear to drop both stacks")
	}
}

func TestHistoryLargeDocument(t *testing.T) {
	h := NewHistory(0)

	var before string
	for i := 0; i < 200; i++ {
		before += fmt.Sprintf("line %d\n", i)
	}
	after := before + "appended"
	h.Record(before, after, Point{Line: 199, Col: 0}, Point{Line: 200, Col: 8})

	text, _, err := h.Undo(after)
	if err != nil {
		t.Fatalf("failed to undo: %v", err)
	}
	if text != before {
		t.Error("expected patch-based undo to restore the original text")
	}
}
