// Package topic defines hierarchical event names and wildcard matching.
package topic

import "strings"

// Topic is a hierarchical event name using dot notation.
// Examples: "document.edited", "document.activated", "config.changed"
type Topic string

const (
	// Single matches exactly one segment in a pattern.
	Single = "*"

	// Multi matches zero or more segments in a pattern.
	Multi = "**"

	// Separator divides topic segments.
	Separator = "."
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Base returns the last segment of the topic.
//
// Example: "document.edited" -> "edited"
func (t Topic) Base() string {
	s := string(t)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

// IsPattern returns true if the topic contains wildcard segments.
func (t Topic) IsPattern() bool {
	return strings.Contains(string(t), Single)
}

// IsValid returns true if the topic is well formed: non-empty, no
// leading or trailing separator, no empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches reports whether the topic matches the given pattern.
// Patterns may contain "*" (exactly one segment) and "**" (zero or
// more segments).
func (t Topic) Matches(pattern Topic) bool {
	return match(t.Segments(), pattern.Segments())
}

func match(topic, pattern []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case Multi:
			// Try consuming zero, one, two, ... topic segments.
			rest := pattern[1:]
			for i := 0; i <= len(topic); i++ {
				if match(topic[i:], rest) {
					return true
				}
			}
			return false
		case Single:
			if len(topic) == 0 {
				return false
			}
		default:
			if len(topic) == 0 || topic[0] != pattern[0] {
				return false
			}
		}
		topic = topic[1:]
		pattern = pattern[1:]
	}
	return len(topic) == 0
}
