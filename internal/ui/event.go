package ui

import "github.com/gdamore/tcell/v2"

// EventType identifies the kind of input event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	// EventFunc carries a function posted from another goroutine.
	EventFunc
)

// Key identifies a key the editor binds.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyCtrlN
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlS
	KeyCtrlW
	KeyCtrlZ
	KeyCtrlY
)

// Event is a terminal input event in editor terms.
type Event struct {
	Type   EventType
	Key    Key
	Rune   rune
	Width  int
	Height int
	Fn     func()
}

// eventFunc is the tcell carrier for Screen.Post.
type eventFunc struct {
	tcell.EventTime
	fn func()
}

func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return convertKey(e)
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}
	case *eventFunc:
		return Event{Type: EventFunc, Fn: e.fn}
	default:
		return Event{Type: EventNone}
	}
}

func convertKey(e *tcell.EventKey) Event {
	ev := Event{Type: EventKey}

	switch e.Key() {
	case tcell.KeyRune:
		ev.Key = KeyRune
		ev.Rune = e.Rune()
	case tcell.KeyEnter:
		ev.Key = KeyEnter
	case tcell.KeyTab:
		ev.Key = KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ev.Key = KeyBackspace
	case tcell.KeyDelete:
		ev.Key = KeyDelete
	case tcell.KeyEscape:
		ev.Key = KeyEscape
	case tcell.KeyUp:
		ev.Key = KeyUp
	case tcell.KeyDown:
		ev.Key = KeyDown
	case tcell.KeyLeft:
		ev.Key = KeyLeft
	case tcell.KeyRight:
		ev.Key = KeyRight
	case tcell.KeyHome:
		ev.Key = KeyHome
	case tcell.KeyEnd:
		ev.Key = KeyEnd
	case tcell.KeyPgUp:
		ev.Key = KeyPageUp
	case tcell.KeyPgDn:
		ev.Key = KeyPageDown
	case tcell.KeyCtrlN:
		ev.Key = KeyCtrlN
	case tcell.KeyCtrlP:
		ev.Key = KeyCtrlP
	case tcell.KeyCtrlQ:
		ev.Key = KeyCtrlQ
	case tcell.KeyCtrlS:
		ev.Key = KeyCtrlS
	case tcell.KeyCtrlW:
		ev.Key = KeyCtrlW
	case tcell.KeyCtrlZ:
		ev.Key = KeyCtrlZ
	case tcell.KeyCtrlY:
		ev.Key = KeyCtrlY
	default:
		ev.Key = KeyNone
	}
	return ev
}
