package extension

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/snipline/snipline/internal/event"
	"github.com/snipline/snipline/internal/event/events"
	"github.com/snipline/snipline/internal/expand"
)

// Expander replaces trigger tokens with their expansions as the user
// types. On every user edit it reads the word ending at the cursor,
// matches it against the rule engine, and rewrites the consumed span,
// then repositions the cursor per the rule.
//
// Failures never surface to the user. A token that matches nothing, an
// edit with no token before the cursor, or a host error all leave the
// document as it was.
type Expander struct {
	mu      sync.Mutex
	ctx     *Context
	engine  *expand.Engine
	extra   []*expand.Rule
	catalog string
	enabled bool
}

// ExpanderOption configures an expander.
type ExpanderOption func(*Expander)

// WithExtraRules sets user rules that survive catalog switches.
func WithExtraRules(rules []*expand.Rule) ExpanderOption {
	return func(e *Expander) {
		e.extra = rules
	}
}

// WithCatalogName records which builtin catalog the engine was built
// from, so a config change to the same catalog is a no-op.
func WithCatalogName(name string) ExpanderOption {
	return func(e *Expander) {
		e.catalog = name
	}
}

// WithExpanderEnabled sets the initial enabled state.
func WithExpanderEnabled(enabled bool) ExpanderOption {
	return func(e *Expander) {
		e.enabled = enabled
	}
}

// NewExpander creates the expander feature over a rule engine.
func NewExpander(engine *expand.Engine, opts ...ExpanderOption) *Expander {
	e := &Expander{
		engine:  engine,
		catalog: expand.CatalogExtended,
		enabled: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Feature.
func (e *Expander) Name() string { return "expander" }

// Activate implements Feature. Only edits typed by the user are
// considered: edits produced by expansions, undo, or redo are filtered
// out so an undone expansion does not immediately reapply.
func (e *Expander) Activate(ctx *Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ctx = ctx

	_, err := ctx.Subscribe(events.TopicDocumentEdited, e.onEdited,
		event.WithFilter(userEditsOnly))
	if err != nil {
		return err
	}
	_, err = ctx.Subscribe(events.TopicConfigChanged, e.onConfigChanged)
	return err
}

// Deactivate implements Feature.
func (e *Expander) Deactivate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx != nil {
		e.ctx.Dispose()
		e.ctx = nil
	}
	return nil
}

func userEditsOnly(env event.Envelope) bool {
	p, ok := env.Payload.(events.DocumentEdited)
	return ok && p.Origin == events.OriginUser
}

func (e *Expander) onEdited(env event.Envelope) error {
	p, ok := env.Payload.(events.DocumentEdited)
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled || e.ctx == nil {
		return nil
	}

	host := e.ctx.Host()
	logger := e.ctx.Logger()

	cursor := Point{Line: p.Cursor.Line, Col: p.Cursor.Col}
	token, ok := e.tokenAt(cursor)
	if !ok {
		return nil
	}

	matches := e.engine.MatchToken(token)
	for i, m := range matches {
		if i > 0 {
			// The first application rewrote the buffer, so later
			// matches must hold against the fresh token.
			cur, ok := host.Cursor()
			if !ok {
				break
			}
			cursor = cur
			token, ok = e.tokenAt(cursor)
			if !ok {
				break
			}
			m, ok = m.Rule.Match(token)
			if !ok {
				continue
			}
		}

		next, err := e.apply(m, cursor)
		if err != nil {
			logger.Debug("expansion %s failed: %v", m.Rule.Name(), err)
			break
		}
		logger.Debug("expanded %q via %s", m.Matched, m.Rule.Name())
		cursor = next
	}
	return nil
}

// tokenAt extracts the trigger candidate ending at the cursor. Callers
// hold the mutex.
func (e *Expander) tokenAt(cursor Point) (string, bool) {
	prefix, err := e.ctx.Host().LineTextUpTo(cursor)
	if err != nil {
		return "", false
	}
	return expand.WordBeforeCursor(prefix)
}

// apply rewrites the matched span, which ends at the cursor, and moves
// the cursor to the rule's target position. It returns the new cursor.
func (e *Expander) apply(m expand.Match, cursor Point) (Point, error) {
	host := e.ctx.Host()

	start := Point{Line: cursor.Line, Col: cursor.Col - m.Consumed}
	if err := host.ReplaceRange(start, cursor, m.Text); err != nil {
		return cursor, err
	}

	target := cursorTarget(start, m.Text, m.Rule)
	if err := host.SetCursor(target); err != nil {
		return cursor, err
	}
	return target, nil
}

// cursorTarget computes where the cursor lands after inserting text at
// start.
func cursorTarget(start Point, text string, r *expand.Rule) Point {
	switch r.Mode() {
	case expand.CursorBack:
		runes := []rune(text)
		cut := len(runes) - r.Offset()
		if cut < 0 {
			cut = 0
		}
		return advance(start, string(runes[:cut]))
	case expand.CursorLineBelow:
		return Point{Line: start.Line + 1, Col: 0}
	default:
		return advance(start, text)
	}
}

// advance returns the position reached by walking text from start.
func advance(start Point, text string) Point {
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return Point{Line: start.Line, Col: start.Col + utf8.RuneCountInString(text)}
	}
	return Point{
		Line: start.Line + len(lines) - 1,
		Col:  utf8.RuneCountInString(lines[len(lines)-1]),
	}
}

func (e *Expander) onConfigChanged(env event.Envelope) error {
	p, ok := env.Payload.(events.ConfigChanged)
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx == nil {
		return nil
	}
	logger := e.ctx.Logger()

	e.enabled = p.ExpansionEnabled

	if policy, err := expand.ParsePolicy(p.Policy); err != nil {
		logger.Warn("ignoring expansion policy %q: %v", p.Policy, err)
	} else {
		e.engine.SetPolicy(policy)
	}

	if p.Catalog != "" && p.Catalog != e.catalog {
		rules, err := expand.Catalog(p.Catalog)
		if err != nil {
			logger.Warn("ignoring catalog %q: %v", p.Catalog, err)
			return nil
		}
		e.engine.SetRules(append(rules, e.extra...))
		e.catalog = p.Catalog
		logger.Info("switched to %s catalog (%d rules)", p.Catalog, len(rules)+len(e.extra))
	}
	return nil
}
