package event

import (
	"errors"
	"fmt"

	"github.com/snipline/snipline/internal/event/topic"
)

var (
	// ErrBusClosed is returned when using a bus after Close.
	ErrBusClosed = errors.New("event bus is closed")

	// ErrNilHandler is returned when subscribing with a nil handler.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrInvalidTopic is returned for malformed topic patterns.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrInvalidEvent is returned when a published value carries no topic.
	ErrInvalidEvent = errors.New("event does not provide a topic")

	// ErrInvalidSubscription is returned for a nil subscription.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrSubscriptionNotFound is returned when unsubscribing an unknown
	// subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// HandlerPanicError records a handler panic converted into an error.
type HandlerPanicError struct {
	Topic topic.Topic
	Value any
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("handler for %q panicked: %v", e.Topic, e.Value)
}
