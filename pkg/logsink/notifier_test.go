package logsink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu      sync.Mutex
	entries []Entry
	err     error
	block   chan struct{}
}

func (s *recordingSender) Log(ctx context.Context, stack Stack, level Level, pkg Package, message string) (map[string]any, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{Stack: stack, Level: level, Package: pkg, Message: message})
	return map[string]any{}, s.err
}

func (s *recordingSender) recorded() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

func TestNotifier_DeliversOnClose(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, NotifierOptions{Workers: 1})

	n.Notify(LevelInfo, PackageService, "first")
	n.Notify(LevelError, PackageHandler, "second")
	require.NoError(t, n.Close(context.Background()))

	assert.Equal(t, []Entry{
		{Stack: StackBackend, Level: LevelInfo, Package: PackageService, Message: "first"},
		{Stack: StackBackend, Level: LevelError, Package: PackageHandler, Message: "second"},
	}, sender.recorded())
}

func TestNotifier_SwallowsSenderErrors(t *testing.T) {
	sender := &recordingSender{err: errors.New("network down")}
	n := NewNotifier(sender, NotifierOptions{Stack: StackFrontend})

	assert.NotPanics(t, func() { n.Notify(LevelWarn, PackageAPI, "ignored failure") })
	require.NoError(t, n.Close(context.Background()))
	assert.Len(t, sender.recorded(), 1)
}

func TestNotifier_DropsWhenQueueFull(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	n := NewNotifier(sender, NotifierOptions{Workers: 1, QueueSize: 1, Timeout: time.Second})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			n.Notify(LevelInfo, PackageService, "burst")
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked while the sink was stalled")
	}

	close(sender.block)
	require.NoError(t, n.Close(context.Background()))
	// 一个在 worker 中处理，一个在队列中，其余被丢弃
	assert.LessOrEqual(t, len(sender.recorded()), 2)
}

func TestNotifier_NotifyAfterCloseIsNoop(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, NotifierOptions{})
	require.NoError(t, n.Close(context.Background()))
	require.NoError(t, n.Close(context.Background()))

	assert.NotPanics(t, func() { n.Notify(LevelInfo, PackageService, "late") })
	assert.Empty(t, sender.recorded())
}

func TestNotifier_CloseHonoursContext(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	n := NewNotifier(sender, NotifierOptions{Workers: 1, Timeout: time.Minute})
	n.Notify(LevelInfo, PackageService, "stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.Close(ctx), context.DeadlineExceeded)

	close(sender.block)
}
