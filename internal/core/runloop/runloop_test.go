package runloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/experience/internal/core/observability/log"
)

func TestManualFiresOnlyPendingFrames(t *testing.T) {
	start := time.Unix(100, 0)
	m := NewManual(start)
	var seen []time.Time
	var loop FrameFunc
	loop = func(ts time.Time) {
		seen = append(seen, ts)
		m.RequestFrame(loop)
	}
	m.RequestFrame(loop)

	m.Advance(16 * time.Millisecond)
	m.Advance(16 * time.Millisecond)
	require.Len(t, seen, 2)
	assert.Equal(t, start.Add(32*time.Millisecond), seen[1])
	assert.Equal(t, 1, m.Pending())
}

func TestManualCancelFrame(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	called := false
	id := m.RequestFrame(func(time.Time) { called = true })
	m.CancelFrame(id)
	m.CancelFrame(id)
	m.Advance(time.Millisecond)
	assert.False(t, called)
}

func TestManualDrainsTasksBeforeFrames(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var order []string
	m.RequestFrame(func(time.Time) { order = append(order, "frame") })
	m.Post(func() {
		order = append(order, "task")
		m.Post(func() { order = append(order, "nested") })
	})
	m.Advance(time.Millisecond)
	assert.Equal(t, []string{"task", "nested", "frame"}, order)
}

func TestLoopRunsFramesAndTasks(t *testing.T) {
	l, err := NewLoop(200, 8, log.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var frames atomic.Int32
	var fn FrameFunc
	fn = func(time.Time) {
		if frames.Add(1) < 3 {
			l.RequestFrame(fn)
		}
	}
	l.RequestFrame(fn)

	taskDone := make(chan struct{})
	l.Post(func() { close(taskDone) })

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	select {
	case <-taskDone:
	case <-time.After(time.Second):
		t.Fatal("task not run")
	}
	assert.Eventually(t, func() bool { return frames.Load() == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestLoopRecoversFromPanics(t *testing.T) {
	l, err := NewLoop(200, 8, log.NewNop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	after := make(chan struct{})
	l.Post(func() { panic("boom") })
	l.Post(func() { close(after) })
	go func() { _ = l.Run(ctx) }()

	select {
	case <-after:
	case <-time.After(time.Second):
		t.Fatal("loop died after panic")
	}
}

func TestNewLoopRejectsBadFPS(t *testing.T) {
	_, err := NewLoop(0, 1, log.NewNop())
	assert.ErrorIs(t, err, ErrInvalidFPS)
}
