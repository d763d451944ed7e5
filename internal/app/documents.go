package app

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/snipline/snipline/internal/editor"
)

// Document is one open file with its buffer, edit history and cursor.
type Document struct {
	// Path is the absolute file path, empty for scratch documents.
	Path string

	// Name is the display name.
	Name string

	// Buffer holds the document text.
	Buffer *editor.Buffer

	// History records edits for undo and redo.
	History *editor.History

	// ReadOnly blocks all edits to the document.
	ReadOnly bool

	mu       sync.Mutex
	cursor   editor.Point
	modified atomic.Bool
}

// NewDocument creates a document over file content.
func NewDocument(path string, content []byte) *Document {
	name := filepath.Base(path)
	if path == "" {
		name = "untitled"
	}
	return &Document{
		Path:    path,
		Name:    name,
		Buffer:  editor.NewBufferFromString(string(content)),
		History: editor.NewHistory(0),
	}
}

// NewScratchDocument creates an unsaved document.
func NewScratchDocument() *Document {
	return &Document{
		Name:    "untitled",
		Buffer:  editor.NewBuffer(),
		History: editor.NewHistory(0),
	}
}

// Cursor returns the document's cursor position.
func (d *Document) Cursor() editor.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}

// SetCursor moves the cursor, clamping it into the buffer.
func (d *Document) SetCursor(p editor.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor = d.Buffer.Clamp(p)
}

// IsModified reports whether the document has unsaved changes.
func (d *Document) IsModified() bool {
	return d.modified.Load()
}

// SetModified sets the unsaved-changes flag.
func (d *Document) SetModified(modified bool) {
	d.modified.Store(modified)
}

// IsScratch reports whether the document has no file path.
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// DocumentManager tracks open documents and which one is active.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document
	order     []string
	active    *Document
	counter   int
}

// NewDocumentManager creates an empty manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{documents: make(map[string]*Document)}
}

// Open reads a file into a new document and activates it. Opening an
// already open path just activates the existing document.
func (dm *DocumentManager) Open(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if doc, ok := dm.documents[abs]; ok {
		dm.active = doc
		return doc, nil
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, &FileError{Op: "open", Path: abs, Err: err}
	}

	doc := NewDocument(abs, content)
	dm.documents[abs] = doc
	dm.order = append(dm.order, abs)
	dm.active = doc
	return doc, nil
}

// CreateScratch creates a fresh scratch document and activates it.
func (dm *DocumentManager) CreateScratch() *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.counter++
	doc := NewScratchDocument()
	if dm.counter > 1 {
		doc.Name = "untitled-" + strconv.Itoa(dm.counter)
	}

	key := "scratch:" + strconv.Itoa(dm.counter)
	dm.documents[key] = doc
	dm.order = append(dm.order, key)
	dm.active = doc
	return doc
}

// CloseActive removes the active document and activates the most
// recently opened remaining one. It returns the closed document and the
// new active document, which is nil when the last document closed.
func (dm *DocumentManager) CloseActive() (*Document, *Document, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.active == nil {
		return nil, nil, ErrNoActiveDocument
	}

	closed := dm.active
	var key string
	for k, d := range dm.documents {
		if d == closed {
			key = k
			break
		}
	}

	delete(dm.documents, key)
	for i, k := range dm.order {
		if k == key {
			dm.order = append(dm.order[:i], dm.order[i+1:]...)
			break
		}
	}

	if len(dm.order) > 0 {
		dm.active = dm.documents[dm.order[len(dm.order)-1]]
	} else {
		dm.active = nil
	}
	return closed, dm.active, nil
}

// Active returns the active document, nil when none is open.
func (dm *DocumentManager) Active() *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.active
}

// Next activates the next document in open order, wrapping around, and
// returns it.
func (dm *DocumentManager) Next() *Document {
	return dm.step(1)
}

// Previous activates the previous document in open order, wrapping
// around, and returns it.
func (dm *DocumentManager) Previous() *Document {
	return dm.step(-1)
}

// step moves the active document by delta in open order.
func (dm *DocumentManager) step(delta int) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if len(dm.order) == 0 || dm.active == nil {
		return dm.active
	}

	current := -1
	for i, key := range dm.order {
		if dm.documents[key] == dm.active {
			current = i
			break
		}
	}
	if current == -1 {
		return dm.active
	}

	n := len(dm.order)
	dm.active = dm.documents[dm.order[(current+delta+n)%n]]
	return dm.active
}

// All returns the open documents in open order.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*Document, 0, len(dm.order))
	for _, key := range dm.order {
		docs = append(docs, dm.documents[key])
	}
	return docs
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// HasDirty reports whether any document has unsaved changes.
func (dm *DocumentManager) HasDirty() bool {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	for _, doc := range dm.documents {
		if doc.IsModified() {
			return true
		}
	}
	return false
}
