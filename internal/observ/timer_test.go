package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerConcurrentPhases(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx := tm.Begin("header")
			tm.End(idx, "ok")
		}()
	}
	wg.Wait()

	r := tm.Report()
	if len(r.Phases) != 8 {
		t.Fatalf("want 8 phases, got %d", len(r.Phases))
	}
	for _, p := range r.Phases {
		if p.Note != "ok" || p.DurationMS < 0 {
			t.Fatalf("unexpected phase %+v", p)
		}
	}
	if !strings.Contains(tm.Summary(), "wall") {
		t.Fatalf("summary lacks wall time:\n%s", tm.Summary())
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer recorded phases")
	}
}
