package signal

// Map returns a signal whose value is f applied to the upstream's latest
// value. f runs exactly once per upstream change and must not write back
// into the cells the upstream is derived from.
func Map[T, U any](s Signal[T], f func(T) U) Signal[U] {
	return Func[U](func(sink func(U)) (U, func()) {
		current, detach := s.Attach(func(v T) {
			sink(f(v))
		})
		return f(current), detach
	})
}

// Filter returns a signal that suppresses changes failing pred. The current
// value at attach time is delivered regardless of pred, so a binding always
// has an initial value.
func Filter[T any](s Signal[T], pred func(T) bool) Signal[T] {
	return Func[T](func(sink func(T)) (T, func()) {
		return s.Attach(func(v T) {
			if pred(v) {
				sink(v)
			}
		})
	})
}

// Dedupe returns a signal that suppresses changes equal to the last value
// delivered to the sink. Equality is the package default: == for common
// comparable types, reflect.DeepEqual otherwise.
func Dedupe[T any](s Signal[T]) Signal[T] {
	return DedupeFunc(s, defaultEquals[T])
}

// DedupeFunc is Dedupe with a caller-supplied equality function.
// Each attached sink tracks its own last-delivered value.
func DedupeFunc[T any](s Signal[T], eq func(T, T) bool) Signal[T] {
	return Func[T](func(sink func(T)) (T, func()) {
		var last T
		current, detach := s.Attach(func(v T) {
			if eq(v, last) {
				return
			}
			last = v
			sink(v)
		})
		last = current
		return current, detach
	})
}

// Pair is the value type emitted by CombineLatest.
type Pair[A, B any] struct {
	First  A
	Second B
}

// CombineLatest returns a signal that emits a new pair whenever either
// input emits. Both inputs have a current value by the time the combined
// signal activates, so the initial pair is available immediately and is
// delivered exactly once by whatever consumes the attach result.
func CombineLatest[A, B any](a Signal[A], b Signal[B]) Signal[Pair[A, B]] {
	return Func[Pair[A, B]](func(sink func(Pair[A, B])) (Pair[A, B], func()) {
		var latest Pair[A, B]
		currentA, detachA := a.Attach(func(v A) {
			latest.First = v
			sink(latest)
		})
		currentB, detachB := b.Attach(func(v B) {
			latest.Second = v
			sink(latest)
		})
		latest = Pair[A, B]{First: currentA, Second: currentB}
		detach := func() {
			detachA()
			detachB()
		}
		return latest, detach
	})
}

// Flatten tracks the latest inner signal of a signal-of-signals. When the
// outer signal emits a new inner signal, the previous inner subscription is
// detached immediately (its sink count drops at switch time) and the new
// inner's current value is delivered. This is how a binding switches which
// source it tracks at runtime without leaking the old subscription.
func Flatten[T any](outer Signal[Signal[T]]) Signal[T] {
	return Func[T](func(sink func(T)) (T, func()) {
		var detachInner func()
		currentInner, detachOuter := outer.Attach(func(inner Signal[T]) {
			if detachInner != nil {
				detachInner()
			}
			current, d := inner.Attach(sink)
			detachInner = d
			sink(current)
		})
		initial, d := currentInner.Attach(sink)
		detachInner = d
		detach := func() {
			if detachInner != nil {
				detachInner()
				detachInner = nil
			}
			detachOuter()
		}
		return initial, detach
	})
}

// MapBool maps a boolean signal to one of two computed branches. Only the
// selected branch is evaluated, on attach and on each boolean change.
func MapBool[T any](b Signal[bool], whenTrue, whenFalse func() T) Signal[T] {
	pick := func(v bool) T {
		if v {
			return whenTrue()
		}
		return whenFalse()
	}
	return Map(b, pick)
}

// Not inverts a boolean signal.
func Not(b Signal[bool]) Signal[bool] {
	return Map(b, func(v bool) bool { return !v })
}
