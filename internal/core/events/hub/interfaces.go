// Package hub is a small synchronous publish/subscribe primitive keyed by a
// closed set of event names.
//
// Key characteristics:
// - Ordered fan-out: handlers run in registration order.
// - Snapshot dispatch: Trigger copies the subscriber list before invoking it, so
//   handlers registered during a dispatch first run on the next Trigger, while
//   handlers cancelled during a dispatch are skipped if their turn has not come.
// - Error aggregation: handler errors are joined and returned from Trigger.
// - Triggering a name without subscribers is a no-op.
package hub

import (
	"fmt"
	"time"
)

// Name identifies an event. Only the declared constants are accepted.
type Name uint8

const (
	Resize Name = iota + 1
	Tick
	Progress
	Ready
	Error

	nameEnd
)

var names = [...]string{
	Resize:   "resize",
	Tick:     "tick",
	Progress: "progress",
	Ready:    "ready",
	Error:    "error",
}

func (n Name) String() string {
	if n.Valid() {
		return names[n]
	}
	return fmt.Sprintf("hub.Name(%d)", uint8(n))
}

// Valid reports whether n is one of the declared event names.
func (n Name) Valid() bool {
	return n > 0 && n < nameEnd
}

// Event is the value delivered to handlers. Treat it as read-only.
type Event struct {
	Name      Name
	Source    string
	Timestamp time.Time
	Data      any
}

// Handler is invoked once per delivered event.
type Handler func(Event) error

// Subscription is a handle to one registered handler.
type Subscription interface {
	ID() string
	Name() Name
	IsActive() bool
	// Cancel removes the handler. Multiple calls are safe.
	Cancel()
}

// Observer is told about every dispatch. Observers should return quickly.
type Observer interface {
	OnTrigger(name Name, event Event)
	OnDelivered(name Name, handlers int, err error, took time.Duration)
}

// Metrics holds counters that are only maintained while an observer is attached.
type Metrics struct {
	Triggered uint64
	Delivered uint64
	Errors    uint64
}
