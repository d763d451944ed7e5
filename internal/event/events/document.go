package events

import "github.com/snipline/snipline/internal/event/topic"

// Document event topics.
const (
	// TopicDocumentActivated is published when the active document
	// changes, including to "none" when the last document closes.
	TopicDocumentActivated topic.Topic = "document.activated"

	// TopicDocumentEdited is published after any change to the active
	// document's text, whatever produced it.
	TopicDocumentEdited topic.Topic = "document.edited"

	// TopicDocumentClosed is published when a document is closed.
	TopicDocumentClosed topic.Topic = "document.closed"

	// TopicDocumentSaved is published after a document is written to disk.
	TopicDocumentSaved topic.Topic = "document.saved"
)

// Position is a zero-based (line, column) pair in rune coordinates.
type Position struct {
	Line int
	Col  int
}

// EditOrigin identifies what produced an edit.
type EditOrigin string

const (
	// OriginUser marks edits from direct typing and deleting.
	OriginUser EditOrigin = "user"

	// OriginExpansion marks edits produced by trigger expansion.
	OriginExpansion EditOrigin = "expansion"

	// OriginUndo marks edits produced by undo.
	OriginUndo EditOrigin = "undo"

	// OriginRedo marks edits produced by redo.
	OriginRedo EditOrigin = "redo"
)

// DocumentActivated is published when the active document changes.
type DocumentActivated struct {
	// HasDocument is false when no document is active; the remaining
	// fields are zero in that case.
	HasDocument bool

	// Path is the file path, empty for scratch documents.
	Path string

	// Name is the display name.
	Name string

	// Text is the full document text.
	Text string
}

// DocumentEdited is published after the active document's text changed.
type DocumentEdited struct {
	// Path is the file path, empty for scratch documents.
	Path string

	// Text is the full document text after the edit.
	Text string

	// Cursor is the cursor position after the edit.
	Cursor Position

	// Origin identifies what produced the edit.
	Origin EditOrigin
}

// DocumentClosed is published when a document is closed.
type DocumentClosed struct {
	Path string
	Name string
}

// DocumentSaved is published after a successful save.
type DocumentSaved struct {
	Path  string
	Bytes int
}
