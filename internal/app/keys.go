package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/snipline/snipline/internal/editor"
	"github.com/snipline/snipline/internal/event"
	"github.com/snipline/snipline/internal/event/events"
	"github.com/snipline/snipline/internal/ui"
)

// handleKey reacts to one key event and returns true when the user
// requested quit.
func (app *Application) handleKey(ev ui.Event) bool {
	app.mu.Lock()
	app.notice = ""
	armed := app.quitArmed
	app.quitArmed = false
	app.mu.Unlock()

	switch ev.Key {
	case ui.KeyCtrlQ:
		if app.documents.HasDirty() && !armed {
			app.mu.Lock()
			app.quitArmed = true
			app.mu.Unlock()
			app.setNotice("unsaved changes, Ctrl+Q again to quit")
			return false
		}
		return true
	case ui.KeyRune:
		app.insertText(string(ev.Rune))
	case ui.KeyEnter:
		app.insertText("\n")
	case ui.KeyTab:
		app.insertText("\t")
	case ui.KeyBackspace:
		app.deleteBackward()
	case ui.KeyDelete:
		app.deleteForward()
	case ui.KeyLeft, ui.KeyRight, ui.KeyUp, ui.KeyDown,
		ui.KeyHome, ui.KeyEnd, ui.KeyPageUp, ui.KeyPageDown:
		app.moveCursor(ev.Key)
	case ui.KeyCtrlS:
		app.saveActive()
	case ui.KeyCtrlW:
		app.closeActive()
	case ui.KeyCtrlN:
		app.switchDocument(app.documents.Next)
	case ui.KeyCtrlP:
		app.switchDocument(app.documents.Previous)
	case ui.KeyCtrlZ:
		app.undo()
	case ui.KeyCtrlY:
		app.redo()
	}
	return false
}

// insertText types text at the cursor of the active document.
func (app *Application) insertText(text string) {
	doc := app.documents.Active()
	if doc == nil {
		return
	}
	cur := doc.Cursor()
	r := editor.Range{Start: cur, End: cur}
	if err := app.applyReplace(doc, r, text, events.OriginUser); err != nil {
		app.editRefused(err)
	}
}

// deleteBackward removes the rune before the cursor, joining lines at
// column zero.
func (app *Application) deleteBackward() {
	doc := app.documents.Active()
	if doc == nil {
		return
	}

	cur := doc.Cursor()
	var start editor.Point
	switch {
	case cur.Col > 0:
		start = editor.Point{Line: cur.Line, Col: cur.Col - 1}
	case cur.Line > 0:
		n, err := doc.Buffer.LineLen(cur.Line - 1)
		if err != nil {
			return
		}
		start = editor.Point{Line: cur.Line - 1, Col: n}
	default:
		return
	}

	r := editor.Range{Start: start, End: cur}
	if err := app.applyReplace(doc, r, "", events.OriginUser); err != nil {
		app.editRefused(err)
	}
}

// deleteForward removes the rune at the cursor, joining lines at the
// end of a line.
func (app *Application) deleteForward() {
	doc := app.documents.Active()
	if doc == nil {
		return
	}

	cur := doc.Cursor()
	n, err := doc.Buffer.LineLen(cur.Line)
	if err != nil {
		return
	}

	var end editor.Point
	switch {
	case cur.Col < n:
		end = editor.Point{Line: cur.Line, Col: cur.Col + 1}
	case cur.Line < doc.Buffer.LineCount()-1:
		end = editor.Point{Line: cur.Line + 1, Col: 0}
	default:
		return
	}

	r := editor.Range{Start: cur, End: end}
	if err := app.applyReplace(doc, r, "", events.OriginUser); err != nil {
		app.editRefused(err)
	}
}

func (app *Application) editRefused(err error) {
	if errors.Is(err, ErrReadOnly) {
		app.setNotice("read-only")
		return
	}
	app.logger.Warn("edit failed: %v", err)
}

// moveCursor applies one movement key to the active document's cursor.
func (app *Application) moveCursor(key ui.Key) {
	doc := app.documents.Active()
	if doc == nil {
		return
	}
	cur := doc.Cursor()
	buf := doc.Buffer

	switch key {
	case ui.KeyLeft:
		if cur.Col > 0 {
			cur.Col--
		} else if cur.Line > 0 {
			cur.Line--
			if n, err := buf.LineLen(cur.Line); err == nil {
				cur.Col = n
			}
		}
	case ui.KeyRight:
		n, err := buf.LineLen(cur.Line)
		if err != nil {
			return
		}
		if cur.Col < n {
			cur.Col++
		} else if cur.Line < buf.LineCount()-1 {
			cur.Line++
			cur.Col = 0
		}
	case ui.KeyUp:
		cur.Line--
	case ui.KeyDown:
		cur.Line++
	case ui.KeyHome:
		cur.Col = 0
	case ui.KeyEnd:
		if n, err := buf.LineLen(cur.Line); err == nil {
			cur.Col = n
		}
	case ui.KeyPageUp:
		cur.Line -= app.pageSize()
	case ui.KeyPageDown:
		cur.Line += app.pageSize()
	}

	doc.SetCursor(cur)
}

// pageSize is the number of lines a page movement jumps.
func (app *Application) pageSize() int {
	app.mu.RLock()
	defer app.mu.RUnlock()
	if app.pageRows > 1 {
		return app.pageRows - 1
	}
	return 20
}

// saveActive writes the active document to its file and reports the
// outcome in the status bar.
func (app *Application) saveActive() {
	doc := app.documents.Active()
	if doc == nil {
		return
	}

	err := app.save(doc)
	switch {
	case err == nil:
		app.setNotice(fmt.Sprintf("wrote %s", doc.Path))
	case errors.Is(err, ErrNoFilePath):
		app.setNotice("no file path to save to")
	case errors.Is(err, ErrReadOnly):
		app.setNotice("read-only")
	default:
		app.logger.Warn("%v", err)
		app.setNotice("save failed: " + err.Error())
	}
}

// save writes one document to its path.
func (app *Application) save(doc *Document) error {
	if doc.IsScratch() {
		return ErrNoFilePath
	}
	if doc.ReadOnly {
		return ErrReadOnly
	}

	text := doc.Buffer.Text()
	if app.Config().Editor.LineEnding == "crlf" {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}

	if err := os.WriteFile(doc.Path, []byte(text), 0o644); err != nil {
		return &FileError{Op: "save", Path: doc.Path, Err: err}
	}

	doc.SetModified(false)
	app.logger.Info("saved %s (%d bytes)", doc.Path, len(text))
	app.publish(event.New(events.TopicDocumentSaved, events.DocumentSaved{
		Path:  doc.Path,
		Bytes: len(text),
	}, "app"))
	return nil
}

// closeActive closes the active document unless it has unsaved changes.
func (app *Application) closeActive() {
	doc := app.documents.Active()
	if doc == nil {
		return
	}
	if err := app.close(doc); errors.Is(err, ErrUnsavedChanges) {
		app.setNotice("unsaved changes in " + doc.Name)
	}
}

// close removes doc from the manager and activates its neighbor.
func (app *Application) close(doc *Document) error {
	if doc.IsModified() {
		return ErrUnsavedChanges
	}

	closed, next, err := app.documents.CloseActive()
	if err != nil {
		return err
	}
	app.logger.Info("closed %s", closed.Name)
	app.publish(event.New(events.TopicDocumentClosed, events.DocumentClosed{
		Path: closed.Path,
		Name: closed.Name,
	}, "app"))
	app.publishActivated(next)
	return nil
}

// switchDocument activates the document selected by cycle and announces
// the change.
func (app *Application) switchDocument(cycle func() *Document) {
	before := app.documents.Active()
	doc := cycle()
	if doc == nil || doc == before {
		return
	}
	app.publishActivated(doc)
}

// undo rewinds the last edit on the active document.
func (app *Application) undo() {
	doc := app.documents.Active()
	if doc == nil {
		return
	}

	text, cur, err := doc.History.Undo(doc.Buffer.Text())
	if err != nil {
		app.setNotice(err.Error())
		return
	}

	doc.Buffer.SetText(text)
	doc.SetCursor(cur)
	doc.SetModified(true)
	app.publishEdited(doc, events.OriginUndo)
}

// redo reapplies the last undone edit on the active document.
func (app *Application) redo() {
	doc := app.documents.Active()
	if doc == nil {
		return
	}

	text, cur, err := doc.History.Redo(doc.Buffer.Text())
	if err != nil {
		app.setNotice(err.Error())
		return
	}

	doc.Buffer.SetText(text)
	doc.SetCursor(cur)
	doc.SetModified(true)
	app.publishEdited(doc, events.OriginRedo)
}
