package event

import (
	"sync/atomic"

	"github.com/snipline/snipline/internal/event/topic"
)

// State represents the lifecycle state of a subscription.
type State int32

const (
	// StateActive means the subscription is receiving events.
	StateActive State = iota

	// StatePaused means delivery is temporarily suspended.
	StatePaused

	// StateCancelled means the subscription is permanently finished.
	StateCancelled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Priority determines handler execution order. Lower values run first.
type Priority int

const (
	PriorityHigh   Priority = -100
	PriorityNormal Priority = 0
	PriorityLow    Priority = 100
)

// Handler processes a delivered event. A non-nil error is counted in
// bus statistics but does not stop delivery to later handlers.
type Handler func(Envelope) error

// FilterFunc decides whether an event is delivered to a subscription.
type FilterFunc func(Envelope) bool

// Subscription is a live registration on the bus. Cancelling it is the
// disposal handle: after Cancel no further events are delivered.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Pattern returns the subscribed topic pattern.
	Pattern() topic.Topic

	// State returns the current lifecycle state.
	State() State

	// Pause temporarily suspends delivery.
	Pause()

	// Resume restarts delivery after a pause.
	Resume()

	// Cancel permanently ends the subscription. Idempotent.
	Cancel()
}

// SubscriptionOption configures a subscription at creation time.
type SubscriptionOption func(*subscription)

// WithPriority sets the execution priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(s *subscription) { s.priority = p }
}

// WithFilter installs a delivery predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(s *subscription) { s.filter = f }
}

// WithOnce cancels the subscription after its first delivery.
func WithOnce() SubscriptionOption {
	return func(s *subscription) { s.once = true }
}

type subscription struct {
	id       string
	pattern  topic.Topic
	handler  Handler
	priority Priority
	filter   FilterFunc
	once     bool
	seq      uint64
	state    atomic.Int32
}

func newSubscription(id string, pattern topic.Topic, h Handler, opts ...SubscriptionOption) *subscription {
	s := &subscription{
		id:       id,
		pattern:  pattern,
		handler:  h,
		priority: PriorityNormal,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(int32(StateActive))
	return s
}

func (s *subscription) ID() string {
	return s.id
}

func (s *subscription) Pattern() topic.Topic {
	return s.pattern
}

func (s *subscription) State() State {
	return State(s.state.Load())
}

// Pause only takes effect on an active subscription.
func (s *subscription) Pause() {
	s.state.CompareAndSwap(int32(StateActive), int32(StatePaused))
}

// Resume only takes effect on a paused subscription.
func (s *subscription) Resume() {
	s.state.CompareAndSwap(int32(StatePaused), int32(StateActive))
}

func (s *subscription) Cancel() {
	s.state.Store(int32(StateCancelled))
}

// shouldDeliver checks state and filter for a specific envelope.
func (s *subscription) shouldDeliver(env Envelope) bool {
	if s.State() != StateActive {
		return false
	}
	if s.filter != nil && !s.filter(env) {
		return false
	}
	return true
}
