package signal

import (
	"sync"
	"sync/atomic"
)

// idCounter is the source of unique IDs for reactive primitives.
var idCounter uint64

// nextID returns the next unique ID. IDs are monotonic and never reused.
func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// Mutable is a shared, writable reactive cell. It may be read and written
// from multiple goroutines; all writes serialize on an internal value lock
// held only for the duration of the swap. Notification never runs while the
// lock is held: writes mark the cell dirty and schedule one flush on the
// scheduler's next tick, so delivery is never reentrant into the writer's
// own call stack.
type Mutable[T any] struct {
	id    uint64
	sched Scheduler

	// mu guards value, dirty and sinks.
	mu    sync.Mutex
	value T
	dirty bool
	sinks []*sinkEntry[T]
}

// sinkEntry wraps a sink so detach can remove it by identity.
type sinkEntry[T any] struct {
	fn func(T)
}

// NewMutable creates a cell holding initial, owned by sched's tick loop.
func NewMutable[T any](sched Scheduler, initial T) *Mutable[T] {
	return &Mutable[T]{
		id:    nextID(),
		sched: sched,
		value: initial,
	}
}

// ID returns the unique identifier for this cell.
func (m *Mutable[T]) ID() uint64 {
	return m.id
}

// Get returns a snapshot of the current value. It never blocks on
// notification, only on a concurrent value swap.
func (m *Mutable[T]) Get() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Set replaces the stored value and schedules notification of all current
// sinks with the new value. Writes before the flush coalesce: sinks only
// observe the final value of the tick.
func (m *Mutable[T]) Set(value T) {
	m.mu.Lock()
	m.value = value
	m.markDirtyLocked()
	m.mu.Unlock()
}

// Update gives fn exclusive access to the stored value for the duration of
// the call. The lock is released and exactly one notification flush is
// scheduled on exit, even if fn panics partway through.
func (m *Mutable[T]) Update(fn func(T) T) {
	m.mu.Lock()
	defer func() {
		m.markDirtyLocked()
		m.mu.Unlock()
	}()
	m.value = fn(m.value)
}

// markDirtyLocked schedules a flush if one is not already pending.
// Callers must hold mu. Schedule only enqueues, so no sink runs under mu.
func (m *Mutable[T]) markDirtyLocked() {
	if m.dirty {
		return
	}
	m.dirty = true
	m.sched.Schedule(m.flush)
}

// flush delivers the latest committed value to all current sinks.
// Runs on the tick goroutine.
func (m *Mutable[T]) flush() {
	m.mu.Lock()
	if !m.dirty {
		m.mu.Unlock()
		return
	}
	m.dirty = false
	value := m.value
	sinks := make([]*sinkEntry[T], len(m.sinks))
	copy(sinks, m.sinks)
	m.mu.Unlock()

	for _, s := range sinks {
		s.fn(value)
	}
}

// Signal returns the source signal view of this cell. Every Attach on the
// returned signal registers an independent sink on the cell.
func (m *Mutable[T]) Signal() Signal[T] {
	return Func[T](m.attach)
}

func (m *Mutable[T]) attach(sink func(T)) (T, func()) {
	entry := &sinkEntry[T]{fn: sink}

	m.mu.Lock()
	m.sinks = append(m.sinks, entry)
	current := m.value
	m.mu.Unlock()

	var once sync.Once
	detach := func() {
		once.Do(func() { m.remove(entry) })
	}
	return current, detach
}

// remove drops a sink by identity. Removal order does not matter.
func (m *Mutable[T]) remove(entry *sinkEntry[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sinks {
		if s == entry {
			m.sinks[i] = m.sinks[len(m.sinks)-1]
			m.sinks[len(m.sinks)-1] = nil
			m.sinks = m.sinks[:len(m.sinks)-1]
			return
		}
	}
}

// SinkCount reports how many sinks are currently attached. Exposed for
// leak checks: after an element that bound this cell despawns, the count
// must return to its prior value.
func (m *Mutable[T]) SinkCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sinks)
}
