package extension

import (
	"testing"

	"github.com/snipline/snipline/internal/event"
	"github.com/snipline/snipline/internal/event/events"
)

func activateLineCounter(t *testing.T, host *fakeHost, opts ...LineCounterOption) (*event.Bus, *LineCounter) {
	t.Helper()
	bus := event.NewBus()
	lc := NewLineCounter(opts...)
	if err := lc.Activate(NewContext(host, bus, nil)); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	return bus, lc
}

func publishActivated(t *testing.T, bus *event.Bus, p events.DocumentActivated) {
	t.Helper()
	if err := bus.Publish(event.New(events.TopicDocumentActivated, p, "test")); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
}

func TestLineCounterShowsCountOnActivate(t *testing.T) {
	host := newFakeHost("one\ntwo\nthree")
	_, lc := activateLineCounter(t, host)
	defer lc.Deactivate()

	if !host.display.visible {
		t.Error("expected display visible")
	}
	if host.display.text != "Lines: 3" {
		t.Errorf("expected Lines: 3, got %q", host.display.text)
	}
}

func TestLineCounterHiddenWithoutDocument(t *testing.T) {
	host := newFakeHost("")
	host.hasDoc = false
	_, lc := activateLineCounter(t, host)
	defer lc.Deactivate()

	if host.display.visible {
		t.Error("expected display hidden without a document")
	}
}

func TestLineCounterFollowsActivation(t *testing.T) {
	host := newFakeHost("")
	host.hasDoc = false
	bus, lc := activateLineCounter(t, host)
	defer lc.Deactivate()

	publishActivated(t, bus, events.DocumentActivated{
		HasDocument: true,
		Path:        "notes.md",
		Text:        "a\nb",
	})
	if !host.display.visible {
		t.Error("expected display visible after document activation")
	}
	if host.display.text != "Lines: 2" {
		t.Errorf("expected Lines: 2, got %q", host.display.text)
	}

	publishActivated(t, bus, events.DocumentActivated{HasDocument: false})
	if host.display.visible {
		t.Error("expected display hidden after last document closed")
	}
}

func TestLineCounterUpdatesOnEdit(t *testing.T) {
	host := newFakeHost("one")
	bus, lc := activateLineCounter(t, host)
	defer lc.Deactivate()

	host.buf.SetText("one\ntwo")
	typeAt(t, bus, host, Point{Line: 1, Col: 3})

	if host.display.text != "Lines: 2" {
		t.Errorf("expected Lines: 2, got %q", host.display.text)
	}
}

func TestLineCounterCountsMathBlocks(t *testing.T) {
	host := newFakeHost("before $$x^2$$ after")
	_, lc := activateLineCounter(t, host)
	defer lc.Deactivate()

	if host.display.text != "Lines: 3" {
		t.Errorf("expected Lines: 3 for text with a math block, got %q", host.display.text)
	}
}

func TestLineCounterConfigFormat(t *testing.T) {
	host := newFakeHost("a\nb")
	bus, lc := activateLineCounter(t, host)
	defer lc.Deactivate()

	err := bus.Publish(event.New(events.TopicConfigChanged, events.ConfigChanged{
		StatusFormat:     "%d righe",
		StatusEnabled:    true,
		ExpansionEnabled: true,
	}, "test"))
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if host.display.text != "2 righe" {
		t.Errorf("expected 2 righe, got %q", host.display.text)
	}
}

func TestLineCounterConfigBadFormatKeepsOld(t *testing.T) {
	host := newFakeHost("a\nb")
	bus, lc := activateLineCounter(t, host)
	defer lc.Deactivate()

	err := bus.Publish(event.New(events.TopicConfigChanged, events.ConfigChanged{
		StatusFormat:     "no verb here",
		StatusEnabled:    true,
		ExpansionEnabled: true,
	}, "test"))
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if host.display.text != "Lines: 2" {
		t.Errorf("expected format unchanged, got %q", host.display.text)
	}
}

func TestLineCounterConfigDisable(t *testing.T) {
	host := newFakeHost("a\nb")
	bus, lc := activateLineCounter(t, host)
	defer lc.Deactivate()

	publish := func(enabled bool) {
		err := bus.Publish(event.New(events.TopicConfigChanged, events.ConfigChanged{
			StatusEnabled:    enabled,
			ExpansionEnabled: true,
		}, "test"))
		if err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	publish(false)
	if host.display.visible {
		t.Error("expected display hidden when disabled")
	}

	publish(true)
	if !host.display.visible {
		t.Error("expected display visible after re-enable")
	}
	if host.display.text != "Lines: 2" {
		t.Errorf("expected recomputed count, got %q", host.display.text)
	}
}

func TestLineCounterDeactivateRemovesDisplay(t *testing.T) {
	host := newFakeHost("a")
	bus, lc := activateLineCounter(t, host)

	if err := lc.Deactivate(); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if !host.display.removed {
		t.Error("expected display removed")
	}

	// Events after deactivation must not touch the removed display.
	host.display.text = ""
	publishActivated(t, bus, events.DocumentActivated{HasDocument: true, Text: "x\ny"})
	if host.display.text != "" {
		t.Error("expected no update after deactivation")
	}
}
