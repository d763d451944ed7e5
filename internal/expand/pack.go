package expand

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Pack is a named set of rules loaded from a JSON document.
//
// The format is a name plus a rule array. Expansions may reference
// capture groups as $1..$9; $$ writes a literal dollar sign. The mode
// is "end", "back", or "line-below"; offset applies to "back" only.
//
//	{
//	  "name": "my-rules",
//	  "rules": [
//	    {"name": "frac", "trigger": "\\\\frac", "expand": "\\frac{}{}",
//	     "mode": "back", "offset": 3}
//	  ]
//	}
type Pack struct {
	Name  string
	Rules []*Rule
}

// ExportEntry is one rule row in the pack JSON format.
type ExportEntry struct {
	Name    string
	Trigger string
	Expand  string
	Mode    string
	Offset  int
}

// ErrInvalidPack is returned for documents that are not a rule pack.
var ErrInvalidPack = errors.New("invalid rule pack")

// PackError decorates a pack failure with its file and rule index.
type PackError struct {
	File string
	Rule int
	Err  error
}

func (e *PackError) Error() string {
	if e.Rule >= 0 {
		return fmt.Sprintf("rule pack %s: rule %d: %v", e.File, e.Rule, e.Err)
	}
	return fmt.Sprintf("rule pack %s: %v", e.File, e.Err)
}

func (e *PackError) Unwrap() error {
	return e.Err
}

// ParsePack decodes a pack from JSON.
func ParsePack(data []byte) (*Pack, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidPack)
	}

	name := gjson.GetBytes(data, "name").String()
	if name == "" {
		return nil, fmt.Errorf("%w: missing pack name", ErrInvalidPack)
	}

	rulesVal := gjson.GetBytes(data, "rules")
	if !rulesVal.IsArray() {
		return nil, fmt.Errorf("%w: rules must be an array", ErrInvalidPack)
	}

	pack := &Pack{Name: name}
	for i, rv := range rulesVal.Array() {
		rule, err := parsePackRule(rv)
		if err != nil {
			return nil, &PackError{File: name, Rule: i, Err: err}
		}
		pack.Rules = append(pack.Rules, rule)
	}
	return pack, nil
}

func parsePackRule(rv gjson.Result) (*Rule, error) {
	name := rv.Get("name").String()
	trigger := rv.Get("trigger").String()
	if !rv.Get("expand").Exists() {
		return nil, fmt.Errorf("%w: missing expand", ErrInvalidPack)
	}
	template := rv.Get("expand").String()

	mode, err := ParseCursorMode(rv.Get("mode").String())
	if err != nil {
		return nil, err
	}

	var opts []RuleOption
	switch mode {
	case CursorBack:
		opts = append(opts, WithCursorBack(int(rv.Get("offset").Int())))
	case CursorLineBelow:
		opts = append(opts, WithCursorLineBelow())
	}

	return NewTemplateRule(name, trigger, template, opts...)
}

// LoadPack reads and decodes one pack file.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PackError{File: path, Rule: -1, Err: err}
	}
	pack, err := ParsePack(data)
	if err != nil {
		var pe *PackError
		if errors.As(err, &pe) {
			pe.File = path
			return nil, pe
		}
		return nil, &PackError{File: path, Rule: -1, Err: err}
	}
	return pack, nil
}

// LoadDir loads every *.json pack in a directory in name order. A
// missing directory is not an error; there are simply no packs.
func LoadDir(dir string) ([]*Pack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	var packs []*Pack
	for _, p := range paths {
		pack, err := LoadPack(p)
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}
	return packs, nil
}

// exportEntries returns the pack rows for one rule.
func (r *Rule) exportEntries() ([]ExportEntry, error) {
	if len(r.variants) > 0 {
		return r.variants, nil
	}
	if r.template != "" {
		return []ExportEntry{{
			Name:    r.name,
			Trigger: r.source,
			Expand:  r.template,
			Mode:    r.mode.String(),
			Offset:  r.offset,
		}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotExportable, r.name)
}

// Export encodes rules as pack JSON. Rules whose expansion varies with
// the match are written as their unrolled concrete forms.
func Export(name string, rules []*Rule) ([]byte, error) {
	out := []byte(`{"name":"","rules":[]}`)

	out, err := sjson.SetBytes(out, "name", name)
	if err != nil {
		return nil, err
	}

	idx := 0
	for _, r := range rules {
		entries, err := r.exportEntries()
		if err != nil {
			return nil, err
		}
		for _, en := range entries {
			base := fmt.Sprintf("rules.%d", idx)
			if out, err = sjson.SetBytes(out, base+".name", en.Name); err != nil {
				return nil, err
			}
			if out, err = sjson.SetBytes(out, base+".trigger", en.Trigger); err != nil {
				return nil, err
			}
			if out, err = sjson.SetBytes(out, base+".expand", en.Expand); err != nil {
				return nil, err
			}
			if out, err = sjson.SetBytes(out, base+".mode", en.Mode); err != nil {
				return nil, err
			}
			if en.Mode == CursorBack.String() {
				if out, err = sjson.SetBytes(out, base+".offset", en.Offset); err != nil {
					return nil, err
				}
			}
			idx++
		}
	}
	return out, nil
}
