// Package stream implements lazy, push-based value delivery.
//
// A handle (Mono for zero-or-one value, Flux for zero-or-more values) is cheap
// to construct and performs no work until a consumer attaches. Consumers attach
// either by subscribing with callbacks, in which case delivery happens
// asynchronously on a separate goroutine, or by a blocking extraction, in which
// case the calling goroutine suspends until the first signal arrives.
//
// Every subscription observes exactly one terminal signal: either a completion
// after the last value, or an error. Errors are part of the signal set and are
// never raised at construction time; a handle that would fail stays silent
// until something demands its result.
package stream

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-creek/creek/clog"
)

var (
	// ErrEmptySource signals that an operation requiring at least one
	// element observed none, e.g. Single on an empty sequence.
	ErrEmptySource = errors.New("empty source")

	// ErrMultipleElements signals that an operation requiring exactly one
	// element observed more than one.
	ErrMultipleElements = errors.New("multiple elements found")
)

// Sink receives the signals a source produces for one subscription.
// A source calls Next for each value and finishes with exactly one terminal
// signal, Complete or Error. Signals after the terminal one are dropped, as
// are values after Next returned false.
//
// A source MUST deliver all signals from a single goroutine.
type Sink[T any] struct {
	next     func(T) bool
	error    func(error)
	complete func()

	terminated bool
	cancelled  bool
}

func newSink[T any](next func(T) bool, err func(error), complete func()) *Sink[T] {
	return &Sink[T]{
		next:     next,
		error:    err,
		complete: complete,
	}
}

// Next delivers one value downstream. It reports whether the consumer wants
// more values; a source should stop delivering once Next returns false.
func (s *Sink[T]) Next(value T) bool {
	if s.terminated || s.cancelled {
		return false
	}

	if !s.next(value) {
		s.cancelled = true
		return false
	}

	return true
}

// Error terminates the subscription with err. No-op if a terminal signal was
// already delivered or the consumer cancelled.
func (s *Sink[T]) Error(err error) {
	if s.terminated || s.cancelled {
		return
	}

	s.terminated = true
	s.error(err)
}

// Complete terminates the subscription successfully. No-op if a terminal
// signal was already delivered or the consumer cancelled.
func (s *Sink[T]) Complete() {
	if s.terminated || s.cancelled {
		return
	}

	s.terminated = true
	s.complete()
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

// OnError registers a callback for the terminal error signal.
// Without it an error is swallowed: it is only delivered, never thrown.
func OnError(fn func(error)) SubscribeOption {
	return func(cfg *subscribeConfig) {
		cfg.onError = fn
	}
}

// OnComplete registers a callback for the successful completion signal.
func OnComplete(fn func()) SubscribeOption {
	return func(cfg *subscribeConfig) {
		cfg.onComplete = fn
	}
}

// WithLogger sets a logger used to record error signals that would otherwise
// be swallowed, because the subscription has no OnError callback.
func WithLogger(logger clog.Logger) SubscribeOption {
	return func(cfg *subscribeConfig) {
		cfg.logger = logger
	}
}

type subscribeConfig struct {
	onError    func(error)
	onComplete func()
	logger     clog.Logger
}

func newSubscribeConfig(opts []SubscribeOption) subscribeConfig {
	cfg := subscribeConfig{
		onError:    nil,
		onComplete: nil,
		logger:     clog.NewNoop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// subscribeSource starts the delivery of src on its own goroutine and routes
// the signals to the given callbacks.
func subscribeSource[T any](src func(*Sink[T]), onNext func(T), opts []SubscribeOption) {
	cfg := newSubscribeConfig(opts)

	sink := newSink(
		func(value T) bool {
			if onNext != nil {
				onNext(value)
			}

			return true
		},
		func(err error) {
			if cfg.onError != nil {
				cfg.onError(err)
				return
			}

			cfg.logger.DebugContext(context.Background(),
				"dropping error signal: subscription has no error consumer",
				slog.String("error", err.Error()),
			)
		},
		func() {
			if cfg.onComplete != nil {
				cfg.onComplete()
			}
		},
	)

	go src(sink)
}

// blockSource suspends the caller until src delivers its first signal.
// It reports the first value, whether a value was present, and the terminal
// error, if any. A done ctx aborts the wait with ctx.Err().
func blockSource[T any](ctx context.Context, src func(*Sink[T])) (T, bool, error) { //nolint:ireturn // valid use of generics
	type signal struct {
		value T
		ok    bool
		err   error
	}

	first := make(chan signal, 1)

	go src(newSink(
		func(value T) bool {
			first <- signal{value: value, ok: true, err: nil}
			return false
		},
		func(err error) {
			first <- signal{value: *new(T), ok: false, err: err}
		},
		func() {
			first <- signal{value: *new(T), ok: false, err: nil}
		},
	))

	select {
	case sig := <-first:
		return sig.value, sig.ok, sig.err
	case <-ctx.Done():
		return *new(T), false, ctx.Err()
	}
}
