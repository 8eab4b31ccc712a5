package render

import (
	"errors"
	"sync"

	"github.com/zeusync/experience/internal/camera"
	"github.com/zeusync/experience/internal/core/scene"
)

var ErrBackendDisposed = errors.New("backend disposed")

// Backend is the GPU device the renderer drives. Drawing itself is the
// backend's business; the renderer only sequences calls.
type Backend interface {
	Configure(opts Options) error
	SetSize(width, height int) error
	SetPixelRatio(ratio float64) error
	Render(sc *scene.Scene, cam *camera.Perspective) (FrameStats, error)
	Dispose() error
}

// FrameStats describes the last drawn frame.
type FrameStats struct {
	Frame      uint64
	DrawCalls  int
	Triangles  int
	Lights     int
	Width      int
	Height     int
	PixelRatio float64
}

// Headless walks the scene like a real backend would and records what it
// would have drawn.
type Headless struct {
	mu       sync.Mutex
	opts     Options
	width    int
	height   int
	ratio    float64
	frames   uint64
	last     FrameStats
	disposed bool
}

var _ Backend = (*Headless)(nil)

func NewHeadless() *Headless {
	return &Headless{ratio: 1}
}

func (h *Headless) Configure(opts Options) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return ErrBackendDisposed
	}
	h.opts = opts
	return nil
}

func (h *Headless) SetSize(width, height int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return ErrBackendDisposed
	}
	h.width, h.height = width, height
	return nil
}

func (h *Headless) SetPixelRatio(ratio float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return ErrBackendDisposed
	}
	h.ratio = ratio
	return nil
}

func (h *Headless) Render(sc *scene.Scene, cam *camera.Perspective) (FrameStats, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return FrameStats{}, ErrBackendDisposed
	}

	h.frames++
	stats := FrameStats{
		Frame:      h.frames,
		Width:      int(float64(h.width) * h.ratio),
		Height:     int(float64(h.height) * h.ratio),
		PixelRatio: h.ratio,
	}
	scene.Traverse(sc, func(n scene.Node) {
		switch v := n.(type) {
		case *scene.Mesh:
			if v.Visible && v.Geometry != nil {
				stats.DrawCalls++
				if tris := v.Geometry.Vertices - 2; tris > 0 {
					stats.Triangles += tris
				}
			}
		case *scene.DirectionalLight:
			stats.Lights++
		}
	})
	h.last = stats
	return stats, nil
}

func (h *Headless) Dispose() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return ErrBackendDisposed
	}
	h.disposed = true
	return nil
}

func (h *Headless) Options() Options {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.opts
}

func (h *Headless) Last() FrameStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

func (h *Headless) Disposed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disposed
}
