package hub

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownEvent = errors.New("unknown event name")

type subscription struct {
	id      string
	name    Name
	handler Handler
	hub     *Hub

	mu     sync.Mutex
	active bool
}

func (s *subscription) ID() string { return s.id }
func (s *subscription) Name() Name { return s.name }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() {
	s.hub.remove(s)
}

func (s *subscription) deactivate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.active
	s.active = false
	return was
}

// Hub is safe for concurrent use, although the frame loop only ever drives it
// from one goroutine.
type Hub struct {
	source string

	mu        sync.RWMutex
	handlers  map[Name][]*subscription
	observers []Observer
	metrics   Metrics
}

// New creates a hub whose events carry source as their Source.
func New(source string) *Hub {
	return &Hub{
		source:   source,
		handlers: make(map[Name][]*subscription),
	}
}

// On registers handler under name. Several handlers may share a name.
func (h *Hub) On(name Name, handler Handler) (Subscription, error) {
	if !name.Valid() {
		return nil, ErrUnknownEvent
	}
	s := &subscription{
		id:      uuid.NewString(),
		name:    name,
		handler: handler,
		hub:     h,
		active:  true,
	}
	h.mu.Lock()
	h.handlers[name] = append(h.handlers[name], s)
	h.mu.Unlock()
	return s, nil
}

// Off removes every handler registered under name. No-op when there are none.
func (h *Hub) Off(name Name) {
	h.mu.Lock()
	subs := h.handlers[name]
	delete(h.handlers, name)
	h.mu.Unlock()
	for _, s := range subs {
		s.deactivate()
	}
}

// Unsubscribe cancels sub. It is safe to call with nil.
func (h *Hub) Unsubscribe(sub Subscription) {
	if sub == nil {
		return
	}
	sub.Cancel()
}

// Subscribers returns how many handlers are registered under name.
func (h *Hub) Subscribers(name Name) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers[name])
}

func (h *Hub) AddObserver(obs Observer) {
	h.mu.Lock()
	h.observers = append(h.observers, obs)
	h.mu.Unlock()
}

func (h *Hub) RemoveObserver(obs Observer) {
	h.mu.Lock()
	h.observers = slices.DeleteFunc(h.observers, func(o Observer) bool { return o == obs })
	h.mu.Unlock()
}

func (h *Hub) Metrics() Metrics {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.metrics
}

// Trigger synchronously invokes the handlers registered under name.
func (h *Hub) Trigger(name Name, data any) error {
	start := time.Now()
	event := Event{Name: name, Source: h.source, Timestamp: start, Data: data}

	h.mu.RLock()
	subs := slices.Clone(h.handlers[name])
	observers := slices.Clone(h.observers)
	h.mu.RUnlock()

	for _, obs := range observers {
		obs.OnTrigger(name, event)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}

	if len(observers) > 0 {
		took := time.Since(start)
		for _, obs := range observers {
			obs.OnDelivered(name, delivered, all, took)
		}
		h.mu.Lock()
		h.metrics.Triggered++
		h.metrics.Delivered += uint64(delivered)
		if all != nil {
			h.metrics.Errors++
		}
		h.mu.Unlock()
	}
	return all
}

func (h *Hub) remove(s *subscription) {
	if !s.deactivate() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.handlers[s.name]
	if i := slices.Index(subs, s); i >= 0 {
		h.handlers[s.name] = slices.Delete(subs, i, i+1)
	}
	if len(h.handlers[s.name]) == 0 {
		delete(h.handlers, s.name)
	}
}
