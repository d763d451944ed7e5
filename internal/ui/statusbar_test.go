package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newSimScreen(t *testing.T, width, height int) (*Screen, tcell.SimulationScreen) {
	t.Helper()

	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	sim.SetSize(width, height)
	t.Cleanup(sim.Fini)

	return WrapScreen(sim), sim
}

func rowText(sim tcell.SimulationScreen, y, width int) string {
	var sb strings.Builder
	x := 0
	for x < width {
		r, _, _, w := sim.GetContent(x, y)
		sb.WriteRune(r)
		if w < 1 {
			w = 1
		}
		x += w
	}
	return sb.String()
}

func TestStatusBarItemLifecycle(t *testing.T) {
	bar := NewStatusBar()
	it := bar.NewItem()

	if got := bar.RightText(); got != "" {
		t.Errorf("expected new item hidden, got %q", got)
	}

	it.SetText("Lines: 3")
	if got := bar.RightText(); got != "" {
		t.Errorf("expected hidden item to stay hidden after SetText, got %q", got)
	}

	it.Show()
	if got := bar.RightText(); got != "Lines: 3" {
		t.Errorf("expected %q, got %q", "Lines: 3", got)
	}

	it.Hide()
	if got := bar.RightText(); got != "" {
		t.Errorf("expected hidden item to vanish, got %q", got)
	}

	it.Show()
	if got := bar.RightText(); got != "Lines: 3" {
		t.Errorf("expected text to survive hide, got %q", got)
	}
}

func TestStatusBarMultipleItems(t *testing.T) {
	bar := NewStatusBar()

	first := bar.NewItem()
	first.SetText("Lines: 2")
	first.Show()

	second := bar.NewItem()
	second.SetText("UTF-8")
	second.Show()

	if got := bar.RightText(); got != "Lines: 2 | UTF-8" {
		t.Errorf("expected items joined in order, got %q", got)
	}
}

func TestStatusBarRemove(t *testing.T) {
	bar := NewStatusBar()

	first := bar.NewItem()
	first.SetText("Lines: 2")
	first.Show()

	second := bar.NewItem()
	second.SetText("UTF-8")
	second.Show()

	first.Remove()
	if got := bar.RightText(); got != "UTF-8" {
		t.Errorf("expected removed item to disappear, got %q", got)
	}

	// Calls on a removed item must be no-ops.
	first.SetText("Lines: 9")
	first.Show()
	first.Remove()
	if got := bar.RightText(); got != "UTF-8" {
		t.Errorf("expected removed item to stay gone, got %q", got)
	}
}

func TestStatusBarEmptyTextSkipped(t *testing.T) {
	bar := NewStatusBar()

	blank := bar.NewItem()
	blank.Show()

	it := bar.NewItem()
	it.SetText("Lines: 1")
	it.Show()

	if got := bar.RightText(); got != "Lines: 1" {
		t.Errorf("expected empty item skipped, got %q", got)
	}
}

func TestStatusBarRender(t *testing.T) {
	const width = 30
	s, sim := newSimScreen(t, width, 3)

	bar := NewStatusBar()
	bar.SetLeft("scratch")

	it := bar.NewItem()
	it.SetText("Lines: 1")
	it.Show()

	bar.Render(s, 2, width)
	s.Show()

	row := rowText(sim, 2, width)
	if got := row[1:8]; got != "scratch" {
		t.Errorf("expected left text at column 1, got %q in row %q", got, row)
	}
	if got := row[21:29]; got != "Lines: 1" {
		t.Errorf("expected right text aligned to the edge, got %q in row %q", got, row)
	}
}

func TestStatusBarRenderOmitsOverlappingRight(t *testing.T) {
	const width = 12
	s, sim := newSimScreen(t, width, 1)

	bar := NewStatusBar()
	bar.SetLeft("a-long-name")

	it := bar.NewItem()
	it.SetText("Lines: 100")
	it.Show()

	bar.Render(s, 0, width)
	s.Show()

	row := rowText(sim, 0, width)
	if strings.Contains(row, "Lines") {
		t.Errorf("expected right text dropped when it would overlap, got %q", row)
	}
}
