package expand

import (
	"errors"
	"fmt"
	"strings"
)

// Catalog names accepted in configuration.
const (
	CatalogExtended = "extended"
	CatalogClassic  = "classic"
)

// ErrUnknownCatalog is returned for an unrecognized catalog name.
var ErrUnknownCatalog = errors.New("unknown catalog")

// Catalog returns the named builtin rule set.
func Catalog(name string) ([]*Rule, error) {
	switch name {
	case "", CatalogExtended:
		return Extended(), nil
	case CatalogClassic:
		return Classic(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCatalog, name)
	}
}

// mustRule panics on a rule construction error. Builtin rules are
// fixed at compile time, so failure here is a programming error.
func mustRule(r *Rule, err error) *Rule {
	if err != nil {
		panic(err)
	}
	return r
}

// arrayBody builds an array environment with n-1 centered columns and
// one right-separated column.
func arrayBody(n int) string {
	return `\begin{array}{` + strings.Repeat("c", n-1) + `|c}\end{array}`
}

// fence builds an empty fenced code block with an optional language tag.
func fence(tag string) string {
	return "```" + tag + "\n\n```"
}

// arrayRule expands arr<N> into an N-column array environment. The
// column spec varies with the captured digit, so the pack
// representation unrolls the nine concrete forms.
func arrayRule(opts ...RuleOption) *Rule {
	expand := func(groups []string) (string, bool) {
		if len(groups) < 2 || groups[1] == "" {
			return "", false
		}
		return arrayBody(int(groups[1][0] - '0')), true
	}

	r := mustRule(NewRule("array", `arr([1-9])`, expand, opts...))

	r.variants = make([]ExportEntry, 0, 9)
	for d := 1; d <= 9; d++ {
		r.variants = append(r.variants, ExportEntry{
			Name:    fmt.Sprintf("array-%d", d),
			Trigger: fmt.Sprintf("arr%d", d),
			Expand:  arrayBody(d),
			Mode:    r.mode.String(),
			Offset:  r.offset,
		})
	}
	return r
}

// Extended returns the full builtin catalog: language-tagged code
// fences and cursor repositioning into freshly inserted delimiters.
func Extended() []*Rule {
	return []*Rule{
		// Cursor lands inside the column-spec braces, before "}\end{array}".
		arrayRule(WithCursorBack(12)),
		mustRule(NewTemplateRule("matrix", `m([0-9]),([0-9])`, `M_{$1,$2} = \pmatrix{}`)),
		mustRule(NewTemplateRule("parens", `\\pars`, `\left( \right)`, WithCursorBack(8))),
		mustRule(NewTemplateRule("code", `\\code`, fence(""), WithCursorLineBelow())),
		mustRule(NewTemplateRule("code-js", `\\prg:js`, fence("js"), WithCursorLineBelow())),
		mustRule(NewTemplateRule("code-python", `\\prg:py`, fence("python"), WithCursorLineBelow())),
		mustRule(NewTemplateRule("code-cpp", `\\prg:cpp`, fence("cpp"), WithCursorLineBelow())),
		mustRule(NewTemplateRule("code-java", `\\prg:java`, fence("java"), WithCursorLineBelow())),
		mustRule(NewTemplateRule("code-pseudo", `\\prg:psc`, fence("pseudocodice"), WithCursorLineBelow())),
		mustRule(NewTemplateRule("cases", `\\sys`, `\begin{cases}\end{cases}`, WithCursorBack(11))),
		mustRule(NewTemplateRule("stackrel", `\\defn`, `\stackrel{}{}`, WithCursorBack(3))),
	}
}

// Classic returns the earlier, smaller catalog. Only the code fence
// repositions the cursor; the other insertions leave it at the end.
func Classic() []*Rule {
	return []*Rule{
		arrayRule(),
		mustRule(NewTemplateRule("matrix", `m([0-9]),([0-9])`, `M_{$1,$2} = \pmatrix{}`)),
		mustRule(NewTemplateRule("parens", `\\pars`, `\left( \right)`)),
		mustRule(NewTemplateRule("code", `\\code`, fence(""), WithCursorLineBelow())),
		mustRule(NewTemplateRule("array-plain", `\\arr`, `\begin{array}{}\end{array}`)),
	}
}
