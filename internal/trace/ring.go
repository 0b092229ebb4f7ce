package trace

import (
	"io"
	"sync"
)

// FailedDetail is the end detail of a unit span whose header failed. A ring
// dump narrows to those headers when there are any.
const FailedDetail = "failed"

// RingTracer keeps the last N events in memory so a failed run can show how
// it got there.
type RingTracer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
	failed   map[uint64]bool // unit span IDs that ended with FailedDetail
}

// NewRingTracer creates a RingTracer holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
		failed:   make(map[uint64]bool),
	}
}

// Emit records ev, overwriting the oldest event once the ring is full.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stored := *ev
	if stored.Seq == 0 {
		stored.Seq = NextSeq()
	}
	if stored.Kind == KindSpanEnd && stored.Scope == ScopeUnit && stored.Detail == FailedDetail {
		t.failed[stored.SpanID] = true
	}
	t.events[t.head] = stored
	t.head = (t.head + 1) % t.capacity
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		return append([]Event(nil), t.events[:t.head]...)
	}
	result := make([]Event, 0, t.capacity)
	result = append(result, t.events[t.head:]...)
	return append(result, t.events[:t.head]...)
}

// Dump writes the stored events. When some header failed, events of the
// headers that succeeded are left out; driver and pass events outside any
// header are always kept.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	t.mu.RLock()
	failed := make(map[uint64]bool, len(t.failed))
	for id := range t.failed {
		failed[id] = true
	}
	t.mu.RUnlock()

	var owner map[uint64]uint64
	if len(failed) > 0 {
		owner = unitOwners(events)
	}
	for i := range events {
		if owner != nil {
			if unit, ok := owner[events[i].SpanID]; ok && !failed[unit] {
				continue
			}
		}
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

// unitOwners maps every span ID to the unit span it belongs to. Spans
// outside any unit are absent.
func unitOwners(events []Event) map[uint64]uint64 {
	parent := make(map[uint64]uint64)
	units := make(map[uint64]bool)
	for _, ev := range events {
		if ev.SpanID == 0 {
			continue
		}
		parent[ev.SpanID] = ev.ParentID
		if ev.Scope == ScopeUnit {
			units[ev.SpanID] = true
		}
	}
	owner := make(map[uint64]uint64, len(parent))
	for id := range parent {
		for cur, hops := id, 0; cur != 0 && hops <= len(parent); cur, hops = parent[cur], hops+1 {
			if units[cur] {
				owner[id] = cur
				break
			}
		}
	}
	return owner
}

// Flush is a no-op; everything is in memory.
func (t *RingTracer) Flush() error { return nil }

// Close is a no-op.
func (t *RingTracer) Close() error { return nil }

// Level returns the capture level.
func (t *RingTracer) Level() Level { return t.level }

// Enabled returns true if tracing is active.
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
