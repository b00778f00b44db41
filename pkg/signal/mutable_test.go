package signal

import "testing"

// testScheduler collects scheduled work and runs it when Flush is called,
// standing in for the App's tick loop.
type testScheduler struct {
	queue []func()
}

func (s *testScheduler) Schedule(fn func()) {
	s.queue = append(s.queue, fn)
}

// Flush drains the queue, including work scheduled during the drain.
func (s *testScheduler) Flush() {
	for len(s.queue) > 0 {
		queue := s.queue
		s.queue = nil
		for _, fn := range queue {
			fn()
		}
	}
}

func TestMutableGetSet(t *testing.T) {
	sched := &testScheduler{}
	m := NewMutable(sched, 1)

	if got := m.Get(); got != 1 {
		t.Errorf("expected initial value 1, got %d", got)
	}

	m.Set(2)
	if got := m.Get(); got != 2 {
		t.Errorf("Get should see the latest committed value, got %d", got)
	}
}

func TestMutableDeliversOnFlush(t *testing.T) {
	sched := &testScheduler{}
	m := NewMutable(sched, 0)

	var got []int
	_, detach := m.Signal().Attach(func(v int) { got = append(got, v) })
	defer detach()

	m.Set(5)
	if len(got) != 0 {
		t.Fatalf("delivery must be deferred to the tick, got %v", got)
	}

	sched.Flush()
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("expected [5], got %v", got)
	}
}

func TestMutableCoalescesWritesWithinTick(t *testing.T) {
	sched := &testScheduler{}
	m := NewMutable(sched, 0)

	var got []int
	_, detach := m.Signal().Attach(func(v int) { got = append(got, v) })
	defer detach()

	m.Set(1)
	m.Set(2)
	m.Set(3)
	sched.Flush()

	if len(got) != 1 || got[0] != 3 {
		t.Errorf("only the final value of the tick may be observed, got %v", got)
	}
}

func TestMutableDeliveryOrder(t *testing.T) {
	sched := &testScheduler{}
	m := NewMutable(sched, 0)

	var got []int
	_, detach := m.Signal().Attach(func(v int) { got = append(got, v) })
	defer detach()

	for i := 1; i <= 4; i++ {
		m.Set(i * 10)
		sched.Flush()
	}

	want := []int{10, 20, 30, 40}
	if len(got) != len(want) {
		t.Fatalf("expected %d deliveries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestMutableUpdateScopedWrite(t *testing.T) {
	sched := &testScheduler{}
	m := NewMutable(sched, 10)

	m.Update(func(v int) int { return v + 5 })
	if got := m.Get(); got != 15 {
		t.Errorf("expected 15, got %d", got)
	}

	var notified int
	_, detach := m.Signal().Attach(func(int) { notified++ })
	defer detach()

	// A panicking mutation must still release the lock and schedule
	// exactly one notification flush.
	func() {
		defer func() { recover() }()
		m.Update(func(int) int { panic("boom") })
	}()

	m.Set(99) // would deadlock if Update leaked the lock
	sched.Flush()
	if notified != 1 {
		t.Errorf("expected one coalesced notification, got %d", notified)
	}
}

func TestMutableDetachIdempotent(t *testing.T) {
	sched := &testScheduler{}
	m := NewMutable(sched, 0)

	var a, b int
	_, detachA := m.Signal().Attach(func(int) { a++ })
	_, detachB := m.Signal().Attach(func(int) { b++ })

	if got := m.SinkCount(); got != 2 {
		t.Fatalf("expected 2 sinks, got %d", got)
	}

	detachA()
	detachA() // no-op
	if got := m.SinkCount(); got != 1 {
		t.Errorf("double detach must not remove another sink, got %d", got)
	}

	m.Set(1)
	sched.Flush()
	if a != 0 {
		t.Errorf("detached sink must not be notified, got %d", a)
	}
	if b != 1 {
		t.Errorf("remaining sink expected 1 notification, got %d", b)
	}

	detachB()
	if got := m.SinkCount(); got != 0 {
		t.Errorf("expected 0 sinks after full detach, got %d", got)
	}
}

func TestMutableAttachReturnsCurrent(t *testing.T) {
	sched := &testScheduler{}
	m := NewMutable(sched, 7)
	m.Set(8)

	current, detach := m.Signal().Attach(func(int) {})
	defer detach()
	if current != 8 {
		t.Errorf("attach must yield the latest committed value, got %d", current)
	}
}
