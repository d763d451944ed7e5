package editor

import "fmt"

// Point is a zero-based (line, column) position in rune coordinates.
// Column may equal the line length, meaning "after the last rune".
type Point struct {
	Line int
	Col  int
}

// String returns the point as "line:col".
func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Before reports whether p comes before q in document order.
func (p Point) Before(q Point) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// After reports whether p comes after q in document order.
func (p Point) After(q Point) bool {
	return q.Before(p)
}

// Range is a half-open [Start, End) span between two points.
type Range struct {
	Start Point
	End   Point
}

// IsEmpty reports whether the range covers no text.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsOrdered reports whether Start does not come after End.
func (r Range) IsOrdered() bool {
	return !r.Start.After(r.End)
}
