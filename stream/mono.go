package stream

import "context"

// Mono is a lazy handle over zero or one forthcoming value. A subscription
// observes at most one value followed by a completion, an empty completion,
// or an error. Constructing or composing a Mono performs no work; each
// subscription evaluates the source anew.
type Mono[T any] struct {
	source func(*Sink[T])
}

// MonoJust returns a Mono emitting the given value.
func MonoJust[T any](value T) Mono[T] {
	return MonoFrom(func(sink *Sink[T]) {
		if sink.Next(value) {
			sink.Complete()
		}
	})
}

// MonoEmpty returns a Mono completing without a value.
func MonoEmpty[T any]() Mono[T] {
	return MonoFrom(func(sink *Sink[T]) {
		sink.Complete()
	})
}

// MonoError returns a Mono terminating with err once it is observed.
func MonoError[T any](err error) Mono[T] {
	return MonoFrom(func(sink *Sink[T]) {
		sink.Error(err)
	})
}

// MonoFrom returns a Mono whose value is delivered by the given source.
// The source runs once per subscription and must respect the Sink contract.
func MonoFrom[T any](source func(*Sink[T])) Mono[T] {
	return Mono[T]{source: source}
}

// Emit performs this handle's delivery into sink, synchronously, on the
// caller's goroutine. It is the building block for custom operators and
// decorators; most callers want Subscribe or Block instead.
func (m Mono[T]) Emit(sink *Sink[T]) {
	m.source(sink)
}

// MapMono returns a Mono whose value is fn applied to the value of m.
// Completion and error signals pass through, and fn runs only when the
// upstream emits.
func MapMono[T, R any](m Mono[T], fn func(T) R) Mono[R] {
	return MonoFrom(func(sink *Sink[R]) {
		m.source(newSink(
			func(value T) bool { return sink.Next(fn(value)) },
			sink.Error,
			sink.Complete,
		))
	})
}

// Filter returns a Mono emitting the value of m only if it satisfies pred,
// completing empty otherwise.
func (m Mono[T]) Filter(pred func(T) bool) Mono[T] {
	return MonoFrom(func(sink *Sink[T]) {
		m.source(newSink(
			func(value T) bool {
				if pred(value) {
					return sink.Next(value)
				}

				return true
			},
			sink.Error,
			sink.Complete,
		))
	})
}

// HasElement returns a Mono emitting whether m emits a value.
func (m Mono[T]) HasElement() Mono[bool] {
	return MonoFrom(func(sink *Sink[bool]) {
		has := false

		m.source(newSink(
			func(T) bool {
				has = true
				return false
			},
			sink.Error,
			func() {},
		))

		if sink.Next(has) {
			sink.Complete()
		}
	})
}

// DoOnError returns a Mono behaving like m, additionally invoking fn when the
// error signal is delivered. The signal itself passes through unchanged.
func (m Mono[T]) DoOnError(fn func(error)) Mono[T] {
	return MonoFrom(func(sink *Sink[T]) {
		m.source(newSink(
			sink.Next,
			func(err error) {
				fn(err)
				sink.Error(err)
			},
			sink.Complete,
		))
	})
}

// Subscribe registers onNext and the optional callbacks and returns
// immediately. Delivery happens asynchronously on a separate goroutine; the
// caller must not assume any ordering between its subsequent code and the
// callbacks. A terminal error without an OnError callback is swallowed.
func (m Mono[T]) Subscribe(onNext func(T), opts ...SubscribeOption) {
	subscribeSource(m.source, onNext, opts)
}

// Block suspends the caller until the value of m, its empty completion, or
// its error is available. It reports the value, whether a value was present,
// and the terminal error, if any.
func (m Mono[T]) Block(ctx context.Context) (T, bool, error) { //nolint:ireturn // valid use of generics
	return blockSource(ctx, m.source)
}
