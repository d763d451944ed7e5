package extension

import (
	"sync"

	"github.com/snipline/snipline/internal/event"
	"github.com/snipline/snipline/internal/event/events"
	"github.com/snipline/snipline/internal/linecount"
)

// LineCounter shows the line count of the active document in the
// status bar. The display follows the active document: it updates on
// every edit and hides when no document is active.
type LineCounter struct {
	mu      sync.Mutex
	ctx     *Context
	display StatusDisplay
	format  *linecount.Formatter
	enabled bool
}

// LineCounterOption configures a line counter.
type LineCounterOption func(*LineCounter)

// WithFormatter sets the status text formatter.
func WithFormatter(f *linecount.Formatter) LineCounterOption {
	return func(lc *LineCounter) {
		if f != nil {
			lc.format = f
		}
	}
}

// WithCounterEnabled sets the initial enabled state.
func WithCounterEnabled(enabled bool) LineCounterOption {
	return func(lc *LineCounter) {
		lc.enabled = enabled
	}
}

// NewLineCounter creates the line count feature.
func NewLineCounter(opts ...LineCounterOption) *LineCounter {
	lc := &LineCounter{
		format:  linecount.DefaultFormatter(),
		enabled: true,
	}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// Name implements Feature.
func (lc *LineCounter) Name() string { return "linecount" }

// Activate implements Feature. The display reflects the current
// document immediately, then follows activation, edit, and config
// events.
func (lc *LineCounter) Activate(ctx *Context) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.ctx = ctx
	lc.display = ctx.Host().NewStatusDisplay()

	if _, err := ctx.Subscribe(events.TopicDocumentActivated, lc.onActivated); err != nil {
		return err
	}
	if _, err := ctx.Subscribe(events.TopicDocumentEdited, lc.onEdited); err != nil {
		return err
	}
	if _, err := ctx.Subscribe(events.TopicConfigChanged, lc.onConfigChanged); err != nil {
		return err
	}

	text, ok := ctx.Host().ActiveText()
	lc.refresh(text, ok)
	return nil
}

// Deactivate implements Feature.
func (lc *LineCounter) Deactivate() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.ctx != nil {
		lc.ctx.Dispose()
		lc.ctx = nil
	}
	if lc.display != nil {
		lc.display.Remove()
		lc.display = nil
	}
	return nil
}

func (lc *LineCounter) onActivated(env event.Envelope) error {
	p, ok := env.Payload.(events.DocumentActivated)
	if !ok {
		return nil
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.refresh(p.Text, p.HasDocument)
	return nil
}

func (lc *LineCounter) onEdited(env event.Envelope) error {
	p, ok := env.Payload.(events.DocumentEdited)
	if !ok {
		return nil
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.refresh(p.Text, true)
	return nil
}

func (lc *LineCounter) onConfigChanged(env event.Envelope) error {
	p, ok := env.Payload.(events.ConfigChanged)
	if !ok {
		return nil
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.ctx == nil {
		return nil
	}

	if p.StatusFormat != "" {
		format, err := linecount.NewFormatter(p.StatusFormat)
		if err != nil {
			lc.ctx.Logger().Warn("ignoring status format %q: %v", p.StatusFormat, err)
		} else {
			lc.format = format
		}
	}
	lc.enabled = p.StatusEnabled

	text, ok := lc.ctx.Host().ActiveText()
	lc.refresh(text, ok)
	return nil
}

// refresh renders the count for the active document, or hides the
// display when there is none. Callers hold the mutex.
func (lc *LineCounter) refresh(text string, hasDocument bool) {
	if lc.display == nil {
		return
	}
	if !lc.enabled || !hasDocument {
		lc.display.Hide()
		return
	}
	lc.display.SetText(lc.format.FormatText(text))
	lc.display.Show()
}
