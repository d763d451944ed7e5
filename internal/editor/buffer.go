package editor

import (
	"errors"
	"strings"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrPointOutOfRange = errors.New("position out of range")
	ErrRangeInvalid    = errors.New("invalid range")
	ErrLineOutOfRange  = errors.New("line out of range")
)

// Buffer holds document text as lines of runes. A buffer always has at
// least one line; the empty buffer is a single empty line. Line endings
// are normalized to LF on the way in. All methods are safe for
// concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	lines    [][]rune
	revision uint64
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{lines: [][]rune{{}}}
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string) *Buffer {
	return &Buffer{lines: splitLines(normalize(s))}
}

// normalize converts CRLF and CR line endings to LF.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// splitLines converts text into rune lines. Text with a trailing
// newline yields a final empty line, mirroring how a cursor can sit on
// the line after it.
func splitLines(s string) [][]rune {
	parts := strings.Split(s, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return lines
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var sb strings.Builder
	for i, line := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}

// SetText replaces the entire buffer content.
func (b *Buffer) SetText(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = splitLines(normalize(s))
	b.revision++
}

// LineCount returns the number of lines. Never less than one.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Line returns the text of the given zero-based line.
func (b *Buffer) Line(i int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i < 0 || i >= len(b.lines) {
		return "", ErrLineOutOfRange
	}
	return string(b.lines[i]), nil
}

// LineLen returns the rune length of the given zero-based line.
func (b *Buffer) LineLen(i int) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i < 0 || i >= len(b.lines) {
		return 0, ErrLineOutOfRange
	}
	return len(b.lines[i]), nil
}

// Len returns the total rune count, counting each line break as one.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for i, line := range b.lines {
		if i > 0 {
			n++
		}
		n += len(line)
	}
	return n
}

// Revision returns a counter incremented by every mutation.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// TextUpTo returns the text of line p.Line from column zero to p.Col.
func (b *Buffer) TextUpTo(p Point) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.validateLocked(p); err != nil {
		return "", err
	}
	return string(b.lines[p.Line][:p.Col]), nil
}

// Clamp returns the nearest valid point to p.
func (b *Buffer) Clamp(p Point) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if p.Line < 0 {
		return Point{}
	}
	if p.Line >= len(b.lines) {
		last := len(b.lines) - 1
		return Point{Line: last, Col: len(b.lines[last])}
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if n := len(b.lines[p.Line]); p.Col > n {
		p.Col = n
	}
	return p
}

// Contains reports whether p is a valid position in the buffer.
func (b *Buffer) Contains(p Point) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.validateLocked(p) == nil
}

func (b *Buffer) validateLocked(p Point) error {
	if p.Line < 0 || p.Line >= len(b.lines) {
		return ErrPointOutOfRange
	}
	if p.Col < 0 || p.Col > len(b.lines[p.Line]) {
		return ErrPointOutOfRange
	}
	return nil
}

// Insert places text at p and returns the position just after it.
func (b *Buffer) Insert(p Point, text string) (Point, error) {
	return b.Replace(Range{Start: p, End: p}, text)
}

// Delete removes the text covered by r.
func (b *Buffer) Delete(r Range) (Point, error) {
	return b.Replace(r, "")
}

// Replace substitutes the text covered by r with text and returns the
// position just after the inserted text. The range may span lines and
// text may contain line breaks.
func (b *Buffer) Replace(r Range, text string) (Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.validateLocked(r.Start); err != nil {
		return Point{}, err
	}
	if err := b.validateLocked(r.End); err != nil {
		return Point{}, err
	}
	if !r.IsOrdered() {
		return Point{}, ErrRangeInvalid
	}

	ins := splitLines(normalize(text))

	head := b.lines[r.Start.Line][:r.Start.Col]
	tail := b.lines[r.End.Line][r.End.Col:]

	// Build the replacement block without aliasing existing lines.
	block := make([][]rune, len(ins))
	if len(ins) == 1 {
		line := make([]rune, 0, len(head)+len(ins[0])+len(tail))
		line = append(line, head...)
		line = append(line, ins[0]...)
		line = append(line, tail...)
		block[0] = line
	} else {
		first := make([]rune, 0, len(head)+len(ins[0]))
		first = append(first, head...)
		first = append(first, ins[0]...)
		block[0] = first

		for i := 1; i < len(ins)-1; i++ {
			mid := make([]rune, len(ins[i]))
			copy(mid, ins[i])
			block[i] = mid
		}

		last := make([]rune, 0, len(ins[len(ins)-1])+len(tail))
		last = append(last, ins[len(ins)-1]...)
		last = append(last, tail...)
		block[len(ins)-1] = last
	}

	var after Point
	if len(ins) == 1 {
		after = Point{Line: r.Start.Line, Col: r.Start.Col + len(ins[0])}
	} else {
		after = Point{Line: r.Start.Line + len(ins) - 1, Col: len(ins[len(ins)-1])}
	}

	rebuilt := make([][]rune, 0, len(b.lines)-(r.End.Line-r.Start.Line+1)+len(block))
	rebuilt = append(rebuilt, b.lines[:r.Start.Line]...)
	rebuilt = append(rebuilt, block...)
	rebuilt = append(rebuilt, b.lines[r.End.Line+1:]...)
	b.lines = rebuilt

	b.revision++
	return after, nil
}
