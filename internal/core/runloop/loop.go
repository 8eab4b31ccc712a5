package runloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/experience/internal/core/observability/log"
)

var (
	ErrAlreadyRunning = errors.New("loop already running")
	ErrInvalidFPS     = errors.New("fps must be positive")
)

var _ Scheduler = (*Loop)(nil)

// Loop drives frames from a ticker. Queued tasks are always drained before the
// frame callbacks of a tick run, so a resize posted before a frame is applied
// before that frame's update.
type Loop struct {
	interval time.Duration
	logger   log.Log

	tasks chan func()

	mu     sync.Mutex
	nextID FrameID
	frames []frameRequest

	running atomic.Bool
	frameNo atomic.Uint64
}

func NewLoop(fps int, queue int, logger log.Log) (*Loop, error) {
	if fps <= 0 {
		return nil, ErrInvalidFPS
	}
	if queue <= 0 {
		queue = 256
	}
	return &Loop{
		interval: time.Second / time.Duration(fps),
		logger:   logger.Named("runloop"),
		tasks:    make(chan func(), queue),
	}, nil
}

func (l *Loop) Now() time.Time { return time.Now() }

func (l *Loop) RequestFrame(fn FrameFunc) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.frames = append(l.frames, frameRequest{id: l.nextID, fn: fn})
	return l.nextID
}

func (l *Loop) CancelFrame(id FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, f := range l.frames {
		if f.id == id {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
}

// Post queues task for the loop goroutine. It blocks when the queue is full.
func (l *Loop) Post(task func()) {
	l.tasks <- task
}

// Frames returns how many ticks have been processed.
func (l *Loop) Frames() uint64 { return l.frameNo.Load() }

// Run processes tasks and frames until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("loop started", log.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped", log.Uint64("frames", l.frameNo.Load()))
			return ctx.Err()
		case task := <-l.tasks:
			l.run("task", task)
		case ts := <-ticker.C:
			l.drain()
			l.frame(ts)
		}
	}
}

func (l *Loop) drain() {
	for {
		select {
		case task := <-l.tasks:
			l.run("task", task)
		default:
			return
		}
	}
}

func (l *Loop) frame(ts time.Time) {
	l.mu.Lock()
	due := l.frames
	l.frames = nil
	l.mu.Unlock()

	l.frameNo.Add(1)
	for _, f := range due {
		l.run("frame", func() { f.fn(ts) })
	}
}

func (l *Loop) run(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("callback panicked", log.String("kind", kind), log.Error(fmt.Errorf("%v", r)))
		}
	}()
	fn()
}
