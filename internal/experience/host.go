package experience

import (
	"errors"
	"sync"

	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/surface"
)

var ErrNoSurface = errors.New("no surface to bind")

// Factory builds a new Experience bound to s.
type Factory func(s surface.Surface) (*Experience, error)

// Host holds the single Experience of a process. Pass it down explicitly
// rather than reaching for a package-level variable.
type Host struct {
	factory Factory
	logger  log.Log

	mu       sync.Mutex
	instance *Experience
}

func NewHost(factory Factory, logger log.Log) *Host {
	return &Host{factory: factory, logger: logger.Named("host")}
}

// GetOrCreate returns the existing Experience, or builds one bound to s.
//
// Once an Experience exists, s is ignored even when it names a different
// surface. After teardown the destroyed instance is returned with ErrDestroyed.
// The first call needs a non-nil surface.
func (h *Host) GetOrCreate(s surface.Surface) (*Experience, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e := h.instance; e != nil {
		if s != nil && s.ID() != e.Surface.ID() {
			h.logger.Warn("surface ignored, experience already bound",
				log.String("bound", e.Surface.ID()),
				log.String("ignored", s.ID()),
			)
		}
		if e.State() == Destroyed {
			return e, ErrDestroyed
		}
		return e, nil
	}

	if s == nil {
		return nil, ErrNoSurface
	}
	e, err := h.factory(s)
	if err != nil {
		return nil, err
	}
	h.instance = e
	return e, nil
}

// Current returns the Experience if one was built.
func (h *Host) Current() (*Experience, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.instance, h.instance != nil
}

// State reports Uninitialized until the first successful GetOrCreate.
func (h *Host) State() State {
	if e, ok := h.Current(); ok {
		return e.State()
	}
	return Uninitialized
}
