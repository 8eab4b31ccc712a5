// Package clock turns scheduler frames into tick events carrying elapsed and
// delta time.
package clock

import (
	"sync"
	"time"

	"github.com/zeusync/experience/internal/core/events/hub"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/runloop"
)

// DefaultDelta is reported until the first frame has been observed.
const DefaultDelta = 16 * time.Millisecond

// Snapshot is the state of the clock after a tick.
type Snapshot struct {
	Start   time.Time
	Current time.Time
	Elapsed time.Duration
	Delta   time.Duration
	Frame   uint64
}

// Clock emits hub.Tick once per frame until Stop is called. Every tick
// requests the next frame; Stop withdraws the pending request.
type Clock struct {
	*hub.Hub

	sched  runloop.Scheduler
	logger log.Log

	mu      sync.Mutex
	state   Snapshot
	pending runloop.FrameID
	running bool
}

// New captures the start time and schedules the first frame.
func New(sched runloop.Scheduler, logger log.Log) *Clock {
	now := sched.Now()
	c := &Clock{
		Hub:    hub.New("clock"),
		sched:  sched,
		logger: logger.Named("clock"),
		state: Snapshot{
			Start:   now,
			Current: now,
			Delta:   DefaultDelta,
		},
	}
	c.Start()
	return c
}

// Start resumes scheduling after Stop. It is a no-op while running.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.pending = c.sched.RequestFrame(c.tick)
}

// Stop cancels the pending frame; no tick is emitted afterwards.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	c.sched.CancelFrame(c.pending)
	c.pending = 0
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Clock) Elapsed() time.Duration { return c.Snapshot().Elapsed }
func (c *Clock) Delta() time.Duration   { return c.Snapshot().Delta }
func (c *Clock) Frames() uint64         { return c.Snapshot().Frame }

func (c *Clock) tick(ts time.Time) {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.advanceLocked(ts)
	snap := c.state
	// Request the next frame first so a panicking handler does not stall the clock.
	c.pending = c.sched.RequestFrame(c.tick)
	c.mu.Unlock()

	if err := c.Trigger(hub.Tick, snap); err != nil {
		c.logger.Error("tick handler failed", log.Uint64("frame", snap.Frame), log.Error(err))
	}
}

func (c *Clock) advanceLocked(ts time.Time) {
	delta := ts.Sub(c.state.Current)
	if delta < 0 {
		c.logger.Warn("frame timestamp went backwards", log.Duration("skew", -delta))
		delta = 0
		ts = c.state.Current
	}
	c.state.Delta = delta
	c.state.Current = ts
	c.state.Elapsed = ts.Sub(c.state.Start)
	c.state.Frame++
}
