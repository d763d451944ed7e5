package event

import (
	"errors"
	"testing"

	"github.com/snipline/snipline/internal/event/topic"
)

func publishString(t *testing.T, b *Bus, top topic.Topic, payload string) {
	t.Helper()
	if err := b.Publish(Wrap(New(top, payload, "test"))); err != nil {
		t.Fatalf("failed to publish %q: %v", top, err)
	}
}

func TestBusSubscribePublish(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var got []string
	sub, err := bus.Subscribe("document.edited", func(env Envelope) error {
		got = append(got, env.Payload.(string))
		return nil
	})
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	defer sub.Cancel()

	publishString(t, bus, "document.edited", "one")
	publishString(t, bus, "document.activated", "ignored")

	if len(got) != 1 || got[0] != "one" {
		t.Errorf("expected [one], got %v", got)
	}
}

func TestBusSubscribeValidation(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	if _, err := bus.Subscribe("document.edited", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
	if _, err := bus.Subscribe("", func(Envelope) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("expected ErrInvalidTopic, got %v", err)
	}
	if _, err := bus.Subscribe("a..b", func(Envelope) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("expected ErrInvalidTopic for empty segment, got %v", err)
	}
}

func TestBusPublishInvalidEvent(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	if err := bus.Publish(42); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestBusPublishUnwrappedEvent(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var payload any
	var meta Metadata
	_, err := bus.Subscribe("document.edited", func(env Envelope) error {
		payload = env.Payload
		meta = env.Metadata
		return nil
	})
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	// Publishing a typed event without wrapping must still deliver the
	// inner payload, not the event value itself.
	if err := bus.Publish(New[string]("document.edited", "inner", "test")); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	if got, ok := payload.(string); !ok || got != "inner" {
		t.Errorf("expected bare payload %q, got %#v", "inner", payload)
	}
	if meta.ID == "" || meta.Source != "test" {
		t.Errorf("expected metadata carried through, got %+v", meta)
	}
}

func TestBusWildcardDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var topics []topic.Topic
	_, err := bus.Subscribe("document.*", func(env Envelope) error {
		topics = append(topics, env.Topic)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	publishString(t, bus, "document.edited", "a")
	publishString(t, bus, "document.activated", "b")
	publishString(t, bus, "config.changed", "c")

	if len(topics) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(topics))
	}
	if topics[0] != "document.edited" || topics[1] != "document.activated" {
		t.Errorf("unexpected delivery order: %v", topics)
	}
}

func TestBusPriorityOrder(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var order []string
	subscribe := func(name string, p Priority) {
		_, err := bus.Subscribe("document.edited", func(Envelope) error {
			order = append(order, name)
			return nil
		}, WithPriority(p))
		if err != nil {
			t.Fatalf("failed to subscribe %s: %v", name, err)
		}
	}

	subscribe("low", PriorityLow)
	subscribe("high", PriorityHigh)
	subscribe("normal", PriorityNormal)

	publishString(t, bus, "document.edited", "x")

	want := []string{"high", "normal", "low"}
	if len(order) != len(want) {
		t.Fatalf("expected %d deliveries, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestBusFilter(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var got []string
	_, err := bus.Subscribe("document.edited", func(env Envelope) error {
		got = append(got, env.Payload.(string))
		return nil
	}, WithFilter(func(env Envelope) bool {
		return env.Payload.(string) != "skip"
	}))
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	publishString(t, bus, "document.edited", "keep")
	publishString(t, bus, "document.edited", "skip")

	if len(got) != 1 || got[0] != "keep" {
		t.Errorf("expected [keep], got %v", got)
	}
}

func TestBusOnce(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	count := 0
	sub, err := bus.Subscribe("document.edited", func(Envelope) error {
		count++
		return nil
	}, WithOnce())
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	publishString(t, bus, "document.edited", "a")
	publishString(t, bus, "document.edited", "b")

	if count != 1 {
		t.Errorf("expected exactly one delivery, got %d", count)
	}
	if sub.State() != StateCancelled {
		t.Errorf("expected cancelled state after delivery, got %v", sub.State())
	}
}

func TestBusPauseResume(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	count := 0
	sub, err := bus.Subscribe("document.edited", func(Envelope) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	sub.Pause()
	publishString(t, bus, "document.edited", "a")
	if count != 0 {
		t.Errorf("expected no delivery while paused, got %d", count)
	}

	sub.Resume()
	publishString(t, bus, "document.edited", "b")
	if count != 1 {
		t.Errorf("expected one delivery after resume, got %d", count)
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	count := 0
	sub, err := bus.Subscribe("document.edited", func(Envelope) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	sub.Cancel()
	publishString(t, bus, "document.edited", "a")

	if count != 0 {
		t.Errorf("expected no delivery after cancel, got %d", count)
	}
	if sub.State() != StateCancelled {
		t.Errorf("expected cancelled state, got %v", sub.State())
	}

	// Cancel is idempotent.
	sub.Cancel()
}

func TestBusReentrantPublish(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var got []string
	_, err := bus.Subscribe("document.edited", func(env Envelope) error {
		text := env.Payload.(string)
		got = append(got, text)
		if text == "outer" {
			return bus.Publish(Wrap(New[string]("document.edited", "inner", "test")))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	publishString(t, bus, "document.edited", "outer")

	if len(got) != 2 || got[0] != "outer" || got[1] != "inner" {
		t.Errorf("expected [outer inner], got %v", got)
	}
}

func TestBusHandlerPanicCounted(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	_, err := bus.Subscribe("document.edited", func(Envelope) error {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	after := 0
	_, err = bus.Subscribe("document.edited", func(Envelope) error {
		after++
		return nil
	}, WithPriority(PriorityLow))
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	publishString(t, bus, "document.edited", "x")

	if after != 1 {
		t.Errorf("expected delivery to continue past panic, got %d", after)
	}
	if stats := bus.Stats(); stats.HandlerPanics != 1 {
		t.Errorf("expected 1 recorded panic, got %d", stats.HandlerPanics)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, err := bus.Subscribe("document.edited", func(Envelope) error { return nil })
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	if err := bus.Unsubscribe(sub); err != nil {
		t.Errorf("unexpected unsubscribe error: %v", err)
	}
	if err := bus.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
	}
	if err := bus.Unsubscribe(nil); !errors.Is(err, ErrInvalidSubscription) {
		t.Errorf("expected ErrInvalidSubscription, got %v", err)
	}
}

func TestBusClose(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Subscribe("document.edited", func(Envelope) error { return nil })
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	bus.Close()

	if sub.State() != StateCancelled {
		t.Errorf("expected close to cancel subscriptions, got %v", sub.State())
	}
	if err := bus.Publish(Wrap(New[string]("document.edited", "x", "test"))); !errors.Is(err, ErrBusClosed) {
		t.Errorf("expected ErrBusClosed, got %v", err)
	}
	if _, err := bus.Subscribe("document.edited", func(Envelope) error { return nil }); !errors.Is(err, ErrBusClosed) {
		t.Errorf("expected ErrBusClosed, got %v", err)
	}
}

func TestBusStats(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	_, err := bus.Subscribe("document.edited", func(Envelope) error { return nil })
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	_, err = bus.Subscribe("document.edited", func(Envelope) error { return errors.New("handler failed") })
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	publishString(t, bus, "document.edited", "x")

	stats := bus.Stats()
	if stats.EventsPublished != 1 {
		t.Errorf("expected 1 published, got %d", stats.EventsPublished)
	}
	if stats.EventsDelivered != 1 {
		t.Errorf("expected 1 delivered, got %d", stats.EventsDelivered)
	}
	if stats.HandlerErrors != 1 {
		t.Errorf("expected 1 handler error, got %d", stats.HandlerErrors)
	}
	if stats.ActiveSubscribers != 2 {
		t.Errorf("expected 2 active subscribers, got %d", stats.ActiveSubscribers)
	}
}
