package runloop

import (
	"sync"
	"time"
)

var _ Scheduler = (*Manual)(nil)

// Manual is a deterministic scheduler for tests: nothing runs until the
// caller fires a frame or drains the task queue.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	nextID FrameID
	frames []frameRequest
	tasks  []func()
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) RequestFrame(fn FrameFunc) FrameID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.frames = append(m.frames, frameRequest{id: m.nextID, fn: fn})
	return m.nextID
}

func (m *Manual) CancelFrame(id FrameID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, f := range m.frames {
		if f.id == id {
			m.frames = append(m.frames[:i], m.frames[i+1:]...)
			return
		}
	}
}

func (m *Manual) Post(task func()) {
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
}

// Pending reports the number of frame requests waiting for the next Fire.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// Drain runs queued tasks, including tasks queued while draining. It returns
// how many ran.
func (m *Manual) Drain() int {
	ran := 0
	for {
		m.mu.Lock()
		tasks := m.tasks
		m.tasks = nil
		m.mu.Unlock()
		if len(tasks) == 0 {
			return ran
		}
		for _, t := range tasks {
			t()
			ran++
		}
	}
}

// Fire sets the clock to ts, drains tasks and runs the frame callbacks that
// were pending before the call.
func (m *Manual) Fire(ts time.Time) {
	m.mu.Lock()
	m.now = ts
	m.mu.Unlock()

	m.Drain()

	m.mu.Lock()
	due := m.frames
	m.frames = nil
	m.mu.Unlock()
	for _, f := range due {
		f.fn(ts)
	}
}

// Advance fires a frame d after the current time.
func (m *Manual) Advance(d time.Duration) time.Time {
	ts := m.Now().Add(d)
	m.Fire(ts)
	return ts
}
