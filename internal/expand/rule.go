package expand

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Errors returned when building rules.
var (
	ErrEmptyName      = errors.New("rule name must not be empty")
	ErrEmptyTrigger   = errors.New("rule trigger must not be empty")
	ErrNotExportable  = errors.New("rule has no template representation")
	ErrUnknownMode    = errors.New("unknown cursor mode")
	ErrNegativeOffset = errors.New("cursor offset must not be negative")
)

// CursorMode says where the cursor lands after an expansion is
// inserted.
type CursorMode uint8

const (
	// CursorEnd leaves the cursor at the end of the inserted text.
	CursorEnd CursorMode = iota

	// CursorBack moves the cursor a fixed number of runes back from
	// the end of the inserted text, to land inside empty delimiters.
	CursorBack

	// CursorLineBelow moves the cursor to column zero of the line
	// after the insertion start, for multi-line fenced blocks.
	CursorLineBelow
)

// String returns the mode name used in rule packs.
func (m CursorMode) String() string {
	switch m {
	case CursorEnd:
		return "end"
	case CursorBack:
		return "back"
	case CursorLineBelow:
		return "line-below"
	default:
		return "unknown"
	}
}

// ParseCursorMode converts a rule-pack mode name.
func ParseCursorMode(s string) (CursorMode, error) {
	switch s {
	case "", "end":
		return CursorEnd, nil
	case "back":
		return CursorBack, nil
	case "line-below":
		return CursorLineBelow, nil
	default:
		return CursorEnd, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// ExpandFunc produces the replacement text for a match. groups holds
// the full match followed by capture groups. Returning false declines
// the match and the rule is treated as not matching.
type ExpandFunc func(groups []string) (string, bool)

// Rule maps a trigger pattern to an expansion. Patterns are tested
// case-insensitively against the word before the cursor and only fire
// when the match ends exactly at the cursor, so the consumed span is
// always the matched text itself. Rules are immutable once built.
type Rule struct {
	name     string
	source   string
	re       *regexp.Regexp
	expand   ExpandFunc
	mode     CursorMode
	offset   int
	template string
	variants []ExportEntry
}

// RuleOption configures a rule at construction time.
type RuleOption func(*Rule)

// WithCursorBack places the cursor the given number of runes back from
// the end of the inserted text.
func WithCursorBack(offset int) RuleOption {
	return func(r *Rule) {
		r.mode = CursorBack
		r.offset = offset
	}
}

// WithCursorLineBelow places the cursor at column zero of the line
// after the insertion start.
func WithCursorLineBelow() RuleOption {
	return func(r *Rule) {
		r.mode = CursorLineBelow
		r.offset = 0
	}
}

// NewRule builds a rule with a computed expansion.
func NewRule(name, trigger string, expand ExpandFunc, opts ...RuleOption) (*Rule, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if trigger == "" {
		return nil, fmt.Errorf("%w: rule %q", ErrEmptyTrigger, name)
	}

	// Case-insensitive, anchored so the match always abuts the cursor.
	re, err := regexp.Compile("(?i:" + trigger + ")$")
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", name, err)
	}

	r := &Rule{
		name:   name,
		source: trigger,
		re:     re,
		expand: expand,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.offset < 0 {
		return nil, fmt.Errorf("%w: rule %q", ErrNegativeOffset, name)
	}
	return r, nil
}

// NewTemplateRule builds a rule whose expansion is a template with
// $1..$9 capture references.
func NewTemplateRule(name, trigger, template string, opts ...RuleOption) (*Rule, error) {
	r, err := NewRule(name, trigger, nil, opts...)
	if err != nil {
		return nil, err
	}
	r.template = template
	r.expand = func(groups []string) (string, bool) {
		return expandTemplate(template, groups), true
	}
	return r, nil
}

// expandTemplate substitutes $1..$9 with capture groups. $$ escapes a
// literal dollar sign.
func expandTemplate(template string, groups []string) string {
	out := make([]byte, 0, len(template))
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 == len(template) {
			out = append(out, c)
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			out = append(out, '$')
			i++
		case next >= '1' && next <= '9':
			idx := int(next - '0')
			if idx < len(groups) {
				out = append(out, groups[idx]...)
			}
			i++
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// Name returns the rule name.
func (r *Rule) Name() string {
	return r.name
}

// Trigger returns the original trigger pattern.
func (r *Rule) Trigger() string {
	return r.source
}

// Mode returns the cursor mode.
func (r *Rule) Mode() CursorMode {
	return r.mode
}

// Offset returns the backward cursor offset for CursorBack rules.
func (r *Rule) Offset() int {
	return r.offset
}

// Match is one rule firing on a token.
type Match struct {
	// Rule is the rule that fired.
	Rule *Rule

	// Matched is the trigger text the rule consumed.
	Matched string

	// Consumed is the rune length of the matched text.
	Consumed int

	// Text is the expansion to insert.
	Text string
}

// Match tests the rule against a token. The rule fires only when the
// pattern matches a suffix of the token ending at the cursor and the
// expansion function accepts the match.
func (r *Rule) Match(token string) (Match, bool) {
	if token == "" {
		return Match{}, false
	}

	loc := r.re.FindStringSubmatchIndex(token)
	if loc == nil {
		return Match{}, false
	}

	groups := make([]string, len(loc)/2)
	for i := range groups {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue
		}
		groups[i] = token[start:end]
	}

	text, ok := r.expand(groups)
	if !ok {
		return Match{}, false
	}

	matched := groups[0]
	return Match{
		Rule:     r,
		Matched:  matched,
		Consumed: utf8.RuneCountInString(matched),
		Text:     text,
	}, true
}
