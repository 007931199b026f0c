package clog

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test returns a logger tuned for unit testing.
// It exposes log-specific assertions for the use in tests.
// The interface follows stretchr/testify as close as possible:
//
//   - Every assert func returns a bool indicating whether the assertion was
//     successful or not, this is useful if you want to go on making further
//     assertions under certain conditions.
func Test(t *testing.T) *TestLogger {
	if t == nil {
		panic("t is nil")
	}

	buf := &testBuffer{
		mu:    sync.Mutex{},
		lines: nil,
	}

	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		AddSource:   false,
		ReplaceAttr: nil,
	}))

	return &TestLogger{
		Logger: logger,
		t:      t,
		buf:    buf,
	}
}

// TestLogger is a special logger for unit testing.
// It exposes all methods of slog and can be injected as a logger dependency.
//
// Additionally, TestLogger exposes a set of assertions on all the lines
// logged with this logger.
type TestLogger struct {
	*slog.Logger

	t   *testing.T
	buf *testBuffer
}

var _ Logger = (*TestLogger)(nil)

// String returns the complete log output logged to TestLogger.
func (l *TestLogger) String() string {
	return strings.Join(l.buf.snapshot(), "")
}

// Lines returns a copy of each line logged to TestLogger so far.
func (l *TestLogger) Lines() []string {
	return l.buf.snapshot()
}

// Empty asserts that the logger has no lines logged.
func (l *TestLogger) Empty(msgAndArgs ...any) bool {
	l.t.Helper()

	lines := l.buf.snapshot()
	if len(lines) == 0 {
		return true
	}

	msg := fmt.Sprintf("expected no log output, but %d line(s) were logged:\n%s",
		len(lines), strings.Join(lines, ""))

	return assert.Fail(l.t, msg, msgAndArgs...)
}

// NotEmpty asserts that the logger has at least one line.
func (l *TestLogger) NotEmpty(msgAndArgs ...any) bool {
	l.t.Helper()

	if len(l.buf.snapshot()) > 0 {
		return true
	}

	return assert.Fail(l.t, "expected log output, but nothing was logged", msgAndArgs...)
}

// Contains asserts that at least one line contains the given substring contains.
func (l *TestLogger) Contains(contains string, msgAndArgs ...any) bool {
	l.t.Helper()

	lines := l.buf.snapshot()
	if slices.ContainsFunc(lines, func(line string) bool {
		return strings.Contains(line, contains)
	}) {
		return true
	}

	msg := fmt.Sprintf("no log line contains: %q\nlogged so far (%d line(s)):\n%s",
		contains, len(lines), strings.Join(lines, ""))

	return assert.Fail(l.t, msg, msgAndArgs...)
}

// NotContains asserts that no line of the log output contains the given substring notContains.
func (l *TestLogger) NotContains(notContains string, msgAndArgs ...any) bool {
	l.t.Helper()

	for i, line := range l.buf.snapshot() {
		if strings.Contains(line, notContains) {
			msg := fmt.Sprintf("log line %d contains: %q, should not\nline: %s", i, notContains, line)

			return assert.Fail(l.t, msg, msgAndArgs...)
		}
	}

	return true
}

// Total asserts that the logger has exactly total number of lines logged.
func (l *TestLogger) Total(total int, msgAndArgs ...any) bool {
	l.t.Helper()

	lines := l.buf.snapshot()
	if len(lines) == total {
		return true
	}

	msg := fmt.Sprintf("expected %d log line(s), got %d:\n%s",
		total, len(lines), strings.Join(lines, ""))

	return assert.Fail(l.t, msg, msgAndArgs...)
}

// testBuffer collects log output line by line. The slog handler writes each
// record with a single Write call, so one call is one line.
type testBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (b *testBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, string(p))

	return len(p), nil
}

// snapshot returns a copy, so callers can hold on to it while logging continues.
func (b *testBuffer) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.lines)
}
