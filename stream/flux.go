package stream

import "context"

// Flux is a lazy handle over zero or more forthcoming values, delivered in
// source order. Constructing or composing a Flux performs no work; each
// subscription evaluates the source anew.
type Flux[T any] struct {
	source func(*Sink[T])
}

// Just returns a Flux emitting the given values in order.
func Just[T any](values ...T) Flux[T] {
	return FluxFrom(func(sink *Sink[T]) {
		for _, v := range values {
			if !sink.Next(v) {
				return
			}
		}

		sink.Complete()
	})
}

// FluxFrom returns a Flux whose values are delivered by the given source.
// The source runs once per subscription and must respect the Sink contract.
func FluxFrom[T any](source func(*Sink[T])) Flux[T] {
	return Flux[T]{source: source}
}

// Emit performs this handle's delivery into sink, synchronously, on the
// caller's goroutine. It is the building block for custom operators and
// decorators; most callers want Subscribe or BlockFirst instead.
func (f Flux[T]) Emit(sink *Sink[T]) {
	f.source(sink)
}

// Map returns a Flux whose values are fn applied to each value of f.
// Cardinality and order are unchanged, completion and error signals pass
// through, and fn runs only when the upstream emits.
func Map[T, R any](f Flux[T], fn func(T) R) Flux[R] {
	return FluxFrom(func(sink *Sink[R]) {
		f.source(newSink(
			func(value T) bool { return sink.Next(fn(value)) },
			sink.Error,
			sink.Complete,
		))
	})
}

// Filter returns a Flux containing only the values of f satisfying pred,
// in their upstream order. Filtering out every value yields an empty,
// successfully completing sequence.
func (f Flux[T]) Filter(pred func(T) bool) Flux[T] {
	return FluxFrom(func(sink *Sink[T]) {
		f.source(newSink(
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

// Take returns a Flux limited to the first n values of f.
func (f Flux[T]) Take(n int) Flux[T] {
	return FluxFrom(func(sink *Sink[T]) {
		if n <= 0 {
			sink.Complete()
			return
		}

		taken := 0

		f.source(newSink(
			func(value T) bool {
				taken++

				if !sink.Next(value) {
					return false
				}

				return taken < n
			},
			sink.Error,
			sink.Complete,
		))

		// upstream was cancelled at the limit and won't signal anymore
		sink.Complete()
	})
}

// Single expects f to contain exactly one value and returns it as a Mono.
// Zero upstream values terminate with ErrEmptySource, more than one with
// ErrMultipleElements. Deciding the multiple-elements case requires observing
// a second value, so the first one is held back until then.
func (f Flux[T]) Single() Mono[T] {
	return MonoFrom(func(sink *Sink[T]) {
		var (
			first     T
			count     int
			completed bool
		)

		f.source(newSink(
			func(value T) bool {
				count++
				if count > 1 {
					return false
				}

				first = value

				return true
			},
			sink.Error,
			func() { completed = true },
		))

		switch {
		case count > 1:
			sink.Error(ErrMultipleElements)
		case completed && count == 1:
			if sink.Next(first) {
				sink.Complete()
			}
		case completed:
			sink.Error(ErrEmptySource)
		}
	})
}

// Next returns the first value of f as a Mono, or an empty Mono if f
// completes without a value. Unlike Single, more than one upstream value is
// not an error, only the first one is taken.
func (f Flux[T]) Next() Mono[T] {
	return MonoFrom(func(sink *Sink[T]) {
		var (
			first T
			seen  bool
		)

		f.source(newSink(
			func(value T) bool {
				first = value
				seen = true

				return false
			},
			sink.Error,
			func() {},
		))

		if seen {
			if sink.Next(first) {
				sink.Complete()
			}

			return
		}

		sink.Complete()
	})
}

// CollectList buffers all values of f into a slice, emitted as a single Mono
// value once f completes.
func (f Flux[T]) CollectList() Mono[[]T] {
	return MonoFrom(func(sink *Sink[[]T]) {
		list := []T{}

		f.source(newSink(
			func(value T) bool {
				list = append(list, value)
				return true
			},
			sink.Error,
			func() {
				if sink.Next(list) {
					sink.Complete()
				}
			},
		))
	})
}

// DoOnError returns a Flux behaving like f, additionally invoking fn when the
// error signal is delivered. The signal itself passes through unchanged.
func (f Flux[T]) DoOnError(fn func(error)) Flux[T] {
	return FluxFrom(func(sink *Sink[T]) {
		f.source(newSink(
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
func (f Flux[T]) Subscribe(onNext func(T), opts ...SubscribeOption) {
	subscribeSource(f.source, onNext, opts)
}

// BlockFirst suspends the caller until the first value of f, its completion,
// or its error is available. It reports the value, whether a value was
// present, and the terminal error, if any.
func (f Flux[T]) BlockFirst(ctx context.Context) (T, bool, error) { //nolint:ireturn // valid use of generics
	return blockSource(ctx, f.source)
}
