package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/snipline/snipline/internal/event/topic"
)

// Metadata carries standard information attached to every event.
type Metadata struct {
	// ID uniquely identifies this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string
}

// Event is a typed event. Events are immutable once created.
type Event[T any] struct {
	// Topic is the hierarchical event name (e.g. "document.edited").
	Topic topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// New creates an event with a fresh ID and timestamp.
func New[T any](t topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Topic:   t,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Topic
}

// EventMetadata returns the event's metadata for type-erased handling.
func (e Event[T]) EventMetadata() Metadata {
	return e.Metadata
}

// EventPayload returns the type-erased payload for envelope delivery.
func (e Event[T]) EventPayload() any {
	return e.Payload
}

// TopicProvider is implemented by values that know their own topic.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// MetadataProvider is implemented by values that carry metadata.
type MetadataProvider interface {
	EventMetadata() Metadata
}

// PayloadProvider is implemented by values that carry a payload distinct
// from themselves. Values without it are delivered as their own payload.
type PayloadProvider interface {
	EventPayload() any
}

// Envelope wraps an event for type-erased delivery to handlers.
type Envelope struct {
	// Topic is the event topic.
	Topic topic.Topic

	// Payload is the type-erased event payload.
	Payload any

	// Metadata is the event metadata.
	Metadata Metadata
}

// Wrap converts a typed event into an Envelope.
func Wrap[T any](e Event[T]) Envelope {
	return Envelope{
		Topic:    e.Topic,
		Payload:  e.Payload,
		Metadata: e.Metadata,
	}
}

// envelopeOf coerces an arbitrary published value into an Envelope.
// The value must be an Envelope already or implement TopicProvider.
func envelopeOf(v any) (Envelope, bool) {
	if env, ok := v.(Envelope); ok {
		return env, env.Topic != ""
	}
	tp, ok := v.(TopicProvider)
	if !ok {
		return Envelope{}, false
	}
	env := Envelope{Topic: tp.EventTopic(), Payload: v}
	if pp, ok := v.(PayloadProvider); ok {
		env.Payload = pp.EventPayload()
	}
	if mp, ok := v.(MetadataProvider); ok {
		env.Metadata = mp.EventMetadata()
	}
	return env, env.Topic != ""
}
