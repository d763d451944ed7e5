package expand

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Policy controls how many matching rules fire per token.
type Policy uint8

const (
	// PolicyAll fires every matching rule in order.
	PolicyAll Policy = iota

	// PolicyFirst stops after the first matching rule.
	PolicyFirst
)

// ErrUnknownPolicy is returned for an unrecognized policy name.
var ErrUnknownPolicy = errors.New("unknown expansion policy")

// String returns the policy name used in configuration.
func (p Policy) String() string {
	switch p {
	case PolicyAll:
		return "all"
	case PolicyFirst:
		return "first"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a configuration policy name.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "all":
		return PolicyAll, nil
	case "first":
		return PolicyFirst, nil
	default:
		return PolicyAll, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// WordBeforeCursor extracts the whitespace-delimited token that ends
// at the cursor from the line text before it. There is no token when
// the prefix is empty, all whitespace, or ends in whitespace.
func WordBeforeCursor(prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	last, _ := utf8.DecodeLastRuneInString(prefix)
	if unicode.IsSpace(last) {
		return "", false
	}
	fields := strings.Fields(prefix)
	if len(fields) == 0 {
		return "", false
	}
	return fields[len(fields)-1], true
}

// Engine holds an ordered rule list and a match policy. Rules and
// policy can be swapped at runtime when configuration reloads.
type Engine struct {
	mu     sync.RWMutex
	rules  []*Rule
	policy Policy
}

// NewEngine creates an engine over the given rules.
func NewEngine(rules []*Rule, policy Policy) *Engine {
	return &Engine{rules: rules, policy: policy}
}

// Rules returns the current rule list.
func (e *Engine) Rules() []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules
}

// SetRules replaces the rule list.
func (e *Engine) SetRules(rules []*Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = rules
}

// Policy returns the current match policy.
func (e *Engine) Policy() Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

// SetPolicy replaces the match policy.
func (e *Engine) SetPolicy(p Policy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policy = p
}

// MatchToken tests the token against the rules in order and returns
// the matches that should fire. A nil result means the token triggers
// nothing.
func (e *Engine) MatchToken(token string) []Match {
	if token == "" {
		return nil
	}

	e.mu.RLock()
	rules := e.rules
	policy := e.policy
	e.mu.RUnlock()

	var matches []Match
	for _, r := range rules {
		m, ok := r.Match(token)
		if !ok {
			continue
		}
		matches = append(matches, m)
		if policy == PolicyFirst {
			break
		}
	}
	return matches
}
