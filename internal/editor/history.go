package editor

import (
	"errors"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Errors returned by history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrPatchFailed   = errors.New("patch did not apply cleanly")
)

// DefaultHistoryLimit bounds the undo stack when no limit is given.
const DefaultHistoryLimit = 1000

// revision stores how to rewind one edit: patches that transform the
// text after the edit back into the text before it, plus the cursor
// positions on both sides.
type revision struct {
	patches      []diffmatchpatch.Patch
	cursorBefore Point
	cursorAfter  Point
	at           time.Time
}

// History tracks edits as diff patches and replays them for undo and
// redo. Storing patches instead of full snapshots keeps the stacks
// small for large documents.
type History struct {
	mu    sync.Mutex
	dmp   *diffmatchpatch.DiffMatchPatch
	undo  []revision
	redo  []revision
	limit int
}

// NewHistory creates a history with the given stack limit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		dmp:   diffmatchpatch.New(),
		limit: limit,
	}
}

// Record captures one edit from before to after. Recording clears the
// redo stack.
func (h *History) Record(before, after string, cursorBefore, cursorAfter Point) {
	if before == after {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.undo = append(h.undo, revision{
		patches:      h.dmp.PatchMake(after, before),
		cursorBefore: cursorBefore,
		cursorAfter:  cursorAfter,
		at:           time.Now(),
	})
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

// Undo rewinds the most recent edit. It takes the current text and
// returns the previous text and the cursor position to restore.
func (h *History) Undo(current string) (string, Point, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undo) == 0 {
		return "", Point{}, ErrNothingToUndo
	}

	rev := h.undo[len(h.undo)-1]
	restored, ok := h.apply(rev.patches, current)
	if !ok {
		return "", Point{}, ErrPatchFailed
	}
	h.undo = h.undo[:len(h.undo)-1]

	h.redo = append(h.redo, revision{
		patches:      h.dmp.PatchMake(restored, current),
		cursorBefore: rev.cursorBefore,
		cursorAfter:  rev.cursorAfter,
		at:           rev.at,
	})

	return restored, rev.cursorBefore, nil
}

// Redo reapplies the most recently undone edit.
func (h *History) Redo(current string) (string, Point, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redo) == 0 {
		return "", Point{}, ErrNothingToRedo
	}

	rev := h.redo[len(h.redo)-1]
	restored, ok := h.apply(rev.patches, current)
	if !ok {
		return "", Point{}, ErrPatchFailed
	}
	h.redo = h.redo[:len(h.redo)-1]

	h.undo = append(h.undo, revision{
		patches:      h.dmp.PatchMake(restored, current),
		cursorBefore: rev.cursorBefore,
		cursorAfter:  rev.cursorAfter,
		at:           rev.at,
	})

	return restored, rev.cursorAfter, nil
}

func (h *History) apply(patches []diffmatchpatch.Patch, text string) (string, bool) {
	result, applied := h.dmp.PatchApply(patches, text)
	for _, ok := range applied {
		if !ok {
			return "", false
		}
	}
	return result, true
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}
