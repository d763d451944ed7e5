package app

import (
	"github.com/snipline/snipline/internal/editor"
	"github.com/snipline/snipline/internal/event"
	"github.com/snipline/snipline/internal/event/events"
	"github.com/snipline/snipline/internal/extension"
)

// The application is the host surface extension features see. All host
// methods operate on the active document.

// ActiveText implements extension.Host.
func (app *Application) ActiveText() (string, bool) {
	doc := app.documents.Active()
	if doc == nil {
		return "", false
	}
	return doc.Buffer.Text(), true
}

// Cursor implements extension.Host.
func (app *Application) Cursor() (extension.Point, bool) {
	doc := app.documents.Active()
	if doc == nil {
		return extension.Point{}, false
	}
	return fromEditor(doc.Cursor()), true
}

// SetCursor implements extension.Host.
func (app *Application) SetCursor(p extension.Point) error {
	doc := app.documents.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	if !doc.Buffer.Contains(toEditor(p)) {
		return editor.ErrPointOutOfRange
	}
	doc.SetCursor(toEditor(p))
	return nil
}

// LineTextUpTo implements extension.Host.
func (app *Application) LineTextUpTo(p extension.Point) (string, error) {
	doc := app.documents.Active()
	if doc == nil {
		return "", ErrNoActiveDocument
	}
	return doc.Buffer.TextUpTo(toEditor(p))
}

// ReplaceRange implements extension.Host. The edit is recorded in the
// document history and published as an expansion edit.
func (app *Application) ReplaceRange(start, end extension.Point, text string) error {
	doc := app.documents.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	r := editor.Range{Start: toEditor(start), End: toEditor(end)}
	return app.applyReplace(doc, r, text, events.OriginExpansion)
}

// NewStatusDisplay implements extension.Host.
func (app *Application) NewStatusDisplay() extension.StatusDisplay {
	return app.statusBar.NewItem()
}

// applyReplace performs one edit on a document: it rewrites the range,
// records the edit for undo, moves the cursor past the inserted text
// and publishes the edited event.
func (app *Application) applyReplace(doc *Document, r editor.Range, text string, origin events.EditOrigin) error {
	if doc.ReadOnly {
		return ErrReadOnly
	}

	before := doc.Buffer.Text()
	cursorBefore := doc.Cursor()

	after, err := doc.Buffer.Replace(r, text)
	if err != nil {
		return err
	}

	doc.History.Record(before, doc.Buffer.Text(), cursorBefore, after)
	doc.SetCursor(after)
	doc.SetModified(true)

	app.publishEdited(doc, origin)
	return nil
}

func (app *Application) publishEdited(doc *Document, origin events.EditOrigin) {
	cur := doc.Cursor()
	app.publish(event.New(events.TopicDocumentEdited, events.DocumentEdited{
		Path:   doc.Path,
		Text:   doc.Buffer.Text(),
		Cursor: events.Position{Line: cur.Line, Col: cur.Col},
		Origin: origin,
	}, "app"))
}

func (app *Application) publishActivated(doc *Document) {
	p := events.DocumentActivated{}
	if doc != nil {
		p = events.DocumentActivated{
			HasDocument: true,
			Path:        doc.Path,
			Name:        doc.Name,
			Text:        doc.Buffer.Text(),
		}
	}
	app.publish(event.New(events.TopicDocumentActivated, p, "app"))
}

func toEditor(p extension.Point) editor.Point {
	return editor.Point{Line: p.Line, Col: p.Col}
}

func fromEditor(p editor.Point) extension.Point {
	return extension.Point{Line: p.Line, Col: p.Col}
}
