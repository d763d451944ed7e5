package event

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/snipline/snipline/internal/event/topic"
)

// Bus is a synchronous publish/subscribe bus. Publish dispatches to
// matching handlers in priority order on the caller's goroutine and
// returns when the last handler has run. Handlers may publish and
// subscribe re-entrantly.
type Bus struct {
	registry *registry
	closed   atomic.Bool

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// Stats is a snapshot of bus counters.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{registry: newRegistry()}
}

// Subscribe registers a handler for every topic matching the pattern.
// The returned Subscription is the caller's disposal handle.
func (b *Bus) Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	if b.closed.Load() {
		return nil, ErrBusClosed
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := newSubscription(uuid.NewString(), pattern, h, opts...)
	b.registry.add(sub)
	return sub, nil
}

// Unsubscribe cancels a subscription and detaches it from the bus.
func (b *Bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()
	if !b.registry.remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Publish delivers an event to every matching subscription. The value
// must be an Envelope or implement TopicProvider. Handler errors and
// panics are counted but do not interrupt delivery to later handlers.
func (b *Bus) Publish(v any) error {
	if b.closed.Load() {
		return ErrBusClosed
	}

	env, ok := envelopeOf(v)
	if !ok {
		return ErrInvalidEvent
	}

	b.published.Add(1)

	for _, sub := range b.registry.match(env.Topic) {
		if !sub.shouldDeliver(env) {
			continue
		}

		if err := b.invoke(sub.handler, env); err != nil {
			b.handlerErrors.Add(1)
		} else {
			b.delivered.Add(1)
		}

		if sub.once {
			sub.Cancel()
			b.registry.remove(sub.id)
		}
	}
	return nil
}

// invoke runs a handler, converting a panic into a counted failure.
func (b *Bus) invoke(h Handler, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			err = &HandlerPanicError{Topic: env.Topic, Value: r}
		}
	}()
	return h(env)
}

// Close cancels every subscription and rejects further use.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.registry.clear()
}

// Stats returns current bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsPublished:   b.published.Load(),
		EventsDelivered:   b.delivered.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: b.registry.countActive(),
	}
}
