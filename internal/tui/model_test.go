package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"trendboard/internal/dashboard"
	"trendboard/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

var testRange = domain.DateRange{
	Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
}

type stubFetcher struct {
	empty bool
}

func (f stubFetcher) DailySeries(ctx context.Context, asset domain.Asset, start, end time.Time) (domain.DailySeries, domain.DailySeries) {
	if f.empty {
		return domain.DailySeries{}, domain.DailySeries{}
	}
	return domain.DailySeries{{Day: "2024-01-01", Value: 0.3}, {Day: "2024-01-02", Value: -0.4}},
		domain.DailySeries{{Day: "2024-01-01", Value: 100}, {Day: "2024-01-02", Value: 120}}
}

func newTestModel(t *testing.T, f stubFetcher) (Model, *dashboard.Controller) {
	t.Helper()
	ctrl := dashboard.NewController(context.Background(), f, domain.Bitcoin, testRange)
	t.Cleanup(ctrl.Close)
	m := NewModel(ctrl, "test")
	m.SetSize(100, 40)
	return m, ctrl
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModelCyclesAsset(t *testing.T) {
	m, ctrl := newTestModel(t, stubFetcher{})

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRight})
	ctrl.Wait()
	if got := ctrl.Snapshot().Asset; got != domain.Ethereum {
		t.Fatalf("expected ethereum, got %s", got)
	}
	if m.pending != ctrl.Snapshot().Generation {
		t.Fatalf("expected pending generation %d, got %d", ctrl.Snapshot().Generation, m.pending)
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	ctrl.Wait()
	if got := ctrl.Snapshot().Asset; got != domain.Cardano {
		t.Fatalf("expected wrap-around to cardano, got %s", got)
	}
}

func TestModelIgnoresStaleSnapshot(t *testing.T) {
	m, ctrl := newTestModel(t, stubFetcher{})

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRight})
	ctrl.Wait()

	stale := dashboard.Snapshot{State: dashboard.State{Asset: domain.Bitcoin, Generation: 1}}
	m, _ = send(m, snapshotMsg{gen: 1, snap: stale})
	if m.snap.Asset != domain.Solana {
		t.Fatalf("stale snapshot replaced state: %s", m.snap.Asset)
	}

	fresh := ctrl.Snapshot()
	m, _ = send(m, snapshotMsg{gen: fresh.Generation, snap: fresh})
	if m.snap.Loading || len(m.snap.Sentiment) != 2 {
		t.Fatalf("expected fresh snapshot applied, got %+v", m.snap.State)
	}
}

func TestModelAppliesDateRange(t *testing.T) {
	m, ctrl := newTestModel(t, stubFetcher{})

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusStart {
		t.Fatalf("expected start input focus, got %d", m.focus)
	}
	m.startInput.SetValue("2024-02-01")
	m.endInput.SetValue("2024-02-10")
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	ctrl.Wait()

	snap := ctrl.Snapshot()
	if !snap.Start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", snap.Start)
	}
	if !snap.End.Equal(time.Date(2024, 2, 10, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("expected end of day inclusive, got %v", snap.End)
	}
	if m.focus != focusNone || m.err != "" {
		t.Fatalf("expected inputs released without error, got focus=%d err=%q", m.focus, m.err)
	}
}

func TestModelRejectsBadDates(t *testing.T) {
	m, ctrl := newTestModel(t, stubFetcher{})
	before := ctrl.Snapshot().Generation

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m.startInput.SetValue("2024-13-01")
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.err, "invalid start date") {
		t.Fatalf("expected start date error, got %q", m.err)
	}

	m.startInput.SetValue("2024-03-05")
	m.endInput.SetValue("2024-03-01")
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.err, "after end") {
		t.Fatalf("expected inverted range error, got %q", m.err)
	}
	if ctrl.Snapshot().Generation != before {
		t.Fatal("invalid input should not start a fetch")
	}
}

func TestModelViewRendersPlotsAndEmptyState(t *testing.T) {
	m, ctrl := newTestModel(t, stubFetcher{})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	ctrl.Wait()
	snap := ctrl.Snapshot()
	m, _ = send(m, snapshotMsg{gen: snap.Generation, snap: snap})

	view := m.View()
	for _, want := range []string{"sentiment (compound)", "price (USD)", "2024-01-01 .. 2024-01-02", "Bitcoin"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}

	e, ectrl := newTestModel(t, stubFetcher{empty: true})
	e, _ = send(e, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	ectrl.Wait()
	esnap := ectrl.Snapshot()
	e, _ = send(e, snapshotMsg{gen: esnap.Generation, snap: esnap})
	if !strings.Contains(e.View(), dashboard.EmptyMessage) {
		t.Fatalf("expected empty message in view:\n%s", e.View())
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t, stubFetcher{})
	_, cmd := send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
