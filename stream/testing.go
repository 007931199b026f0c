package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Verify returns a Verifier asserting the exact signal sequence of f.
// Expectations are recorded first and checked by Verify, mirroring the
// signal-by-signal style of verifying a subscription:
//
//	stream.Verify(flux).
//		ExpectNext("Mario").
//		ExpectComplete().
//		Verify(t)
func Verify[T any](f Flux[T]) *Verifier[T] {
	return &Verifier[T]{source: f.source, steps: nil, terminal: terminalExpectation{}}
}

// VerifyMono returns a Verifier asserting the exact signal sequence of m.
func VerifyMono[T any](m Mono[T]) *Verifier[T] {
	return &Verifier[T]{source: m.source, steps: nil, terminal: terminalExpectation{}}
}

// Verifier subscribes to a handle and asserts the observed signals against
// the recorded expectations.
type Verifier[T any] struct {
	source   func(*Sink[T])
	steps    []expectation[T]
	terminal terminalExpectation
}

type expectation[T any] struct {
	values []T
	count  int
}

type terminalExpectation struct {
	set      bool
	complete bool
	err      error
}

// ExpectNext records the expectation that the given values are the next
// signals, in order.
func (v *Verifier[T]) ExpectNext(values ...T) *Verifier[T] {
	v.steps = append(v.steps, expectation[T]{values: values, count: 0})

	return v
}

// ExpectNextCount records the expectation that exactly count value signals
// follow, without asserting their content.
func (v *Verifier[T]) ExpectNextCount(count int) *Verifier[T] {
	v.steps = append(v.steps, expectation[T]{values: nil, count: count})

	return v
}

// ExpectComplete records the expectation that the handle completes
// successfully after the previously expected values.
func (v *Verifier[T]) ExpectComplete() *Verifier[T] {
	v.terminal = terminalExpectation{set: true, complete: true, err: nil}

	return v
}

// ExpectError records the expectation that the handle terminates with an
// error matching target, after the previously expected values.
func (v *Verifier[T]) ExpectError(target error) *Verifier[T] {
	v.terminal = terminalExpectation{set: true, complete: false, err: target}

	return v
}

// Verify subscribes, waits for the terminal signal, and asserts the observed
// signals against all recorded expectations.
func (v *Verifier[T]) Verify(t *testing.T) {
	t.Helper()

	require.True(t, v.terminal.set, "verifier needs a terminal expectation: ExpectComplete or ExpectError")

	var (
		values    []T
		completed bool
		termErr   error
	)

	v.source(newSink(
		func(value T) bool {
			values = append(values, value)
			return true
		},
		func(err error) { termErr = err },
		func() { completed = true },
	))

	pos := 0

	for _, step := range v.steps {
		if step.values != nil {
			for _, want := range step.values {
				require.Less(t, pos, len(values), "expected another value signal, got none")
				assert.Equal(t, want, values[pos])
				pos++
			}

			continue
		}

		require.LessOrEqual(t, pos+step.count, len(values), "expected more value signals than emitted")
		pos += step.count
	}

	assert.Len(t, values, pos, "handle emitted more values than expected")

	if v.terminal.complete {
		assert.True(t, completed, "expected successful completion")
		assert.NoError(t, termErr)

		return
	}

	assert.ErrorIs(t, termErr, v.terminal.err)
	assert.False(t, completed, "expected an error signal, got completion")
}
