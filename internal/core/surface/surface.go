// Package surface describes the drawable target supplied by the host.
package surface

import (
	"errors"
	"slices"
	"sync"
)

var ErrReleased = errors.New("surface released")

// Surface is the opaque output target. OnResize delivers the host's resize
// signal; the returned func detaches the listener.
type Surface interface {
	ID() string
	Size() (width, height int)
	DevicePixelRatio() float64
	OnResize(fn func()) (detach func())
	Release() error
}

// Headless is an in-memory surface used by the command line host and tests.
type Headless struct {
	id string

	mu        sync.Mutex
	width     int
	height    int
	ratio     float64
	listeners []*listener
	released  bool
}

type listener struct{ fn func() }

var _ Surface = (*Headless)(nil)

func NewHeadless(id string, width, height int, ratio float64) *Headless {
	return &Headless{id: id, width: width, height: height, ratio: ratio}
}

func (h *Headless) ID() string { return h.id }

func (h *Headless) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *Headless) DevicePixelRatio() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ratio
}

func (h *Headless) OnResize(fn func()) func() {
	l := &listener{fn: fn}
	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.listeners = slices.DeleteFunc(h.listeners, func(x *listener) bool { return x == l })
	}
}

// Resize changes the dimensions and emits the resize signal.
func (h *Headless) Resize(width, height int, ratio float64) {
	h.mu.Lock()
	h.width, h.height, h.ratio = width, height, ratio
	ls := slices.Clone(h.listeners)
	h.mu.Unlock()
	for _, l := range ls {
		l.fn()
	}
}

func (h *Headless) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// Release detaches every listener. A second call returns ErrReleased.
func (h *Headless) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return ErrReleased
	}
	h.released = true
	h.listeners = nil
	return nil
}

func (h *Headless) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}
