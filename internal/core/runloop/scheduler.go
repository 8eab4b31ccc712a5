// Package runloop provides the single logical thread every frame, resize and
// load-completion callback runs on.
package runloop

import "time"

// FrameID identifies a pending frame request.
type FrameID uint64

// FrameFunc receives the timestamp of the frame it was scheduled for.
type FrameFunc func(ts time.Time)

// Scheduler is the host event loop.
//
// RequestFrame registers fn for the next frame only; a callback that wants to
// keep running must request again, and CancelFrame withdraws a request that has
// not fired yet. Post queues a task for the loop thread and may be called from
// any goroutine.
type Scheduler interface {
	Now() time.Time
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
	Post(task func())
}

type frameRequest struct {
	id FrameID
	fn FrameFunc
}
