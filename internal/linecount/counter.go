// Package linecount computes the line count shown in the status bar.
// Text is split into segments on line breaks and on $$ math-block
// delimiters, so a display-math block counts as a break even when it
// sits mid-line.
package linecount

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBadFormat is returned for display formats without a count verb.
var ErrBadFormat = errors.New("format must contain exactly one %d")

// DefaultFormat is the status text format.
const DefaultFormat = "Lines: %d"

// segmentPattern splits text on a line break or a $$ delimiter.
var segmentPattern = regexp.MustCompile(`\n|\$\$`)

// Count returns the number of segments in text. A trailing delimiter
// does not open a new segment: when there is more than one segment and
// the last is empty, it is not counted. The empty text counts as one.
func Count(text string) int {
	segments := segmentPattern.Split(text, -1)
	n := len(segments)
	if n > 1 && segments[n-1] == "" {
		n--
	}
	return n
}

// Formatter renders a count as status text.
type Formatter struct {
	format string
}

// NewFormatter creates a formatter for the given format string, which
// must contain exactly one %d verb.
func NewFormatter(format string) (*Formatter, error) {
	if strings.Count(format, "%d") != 1 {
		return nil, ErrBadFormat
	}
	return &Formatter{format: format}, nil
}

// DefaultFormatter returns a formatter using DefaultFormat.
func DefaultFormatter() *Formatter {
	return &Formatter{format: DefaultFormat}
}

// Format renders the count.
func (f *Formatter) Format(n int) string {
	return fmt.Sprintf(f.format, n)
}

// FormatText counts text and renders the result in one step.
func (f *Formatter) FormatText(text string) string {
	return f.Format(Count(text))
}
