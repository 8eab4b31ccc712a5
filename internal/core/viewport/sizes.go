// Package viewport tracks the output size and pixel density and announces
// changes with hub.Resize.
package viewport

import (
	"math"
	"sync"

	"github.com/zeusync/experience/internal/core/events/hub"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/surface"
)

// DefaultMaxPixelRatio bounds fill rate on high density displays.
const DefaultMaxPixelRatio = 2.0

// Size is the value carried by resize events.
type Size struct {
	Width      int
	Height     int
	PixelRatio float64
}

// Aspect returns width/height, or 1 for a degenerate height.
func (s Size) Aspect() float64 {
	if s.Height <= 0 {
		return 1
	}
	return float64(s.Width) / float64(s.Height)
}

type Sizes struct {
	*hub.Hub

	surface  surface.Surface
	maxRatio float64
	logger   log.Log
	detach   func()

	mu   sync.RWMutex
	size Size
}

// New reads the initial size from s and listens for its resize signal.
// A non-positive maxRatio selects DefaultMaxPixelRatio.
func New(s surface.Surface, maxRatio float64, logger log.Log) *Sizes {
	if maxRatio <= 0 {
		maxRatio = DefaultMaxPixelRatio
	}
	z := &Sizes{
		Hub:      hub.New("sizes"),
		surface:  s,
		maxRatio: maxRatio,
		logger:   logger.Named("sizes"),
	}
	z.size = z.measure()
	z.detach = s.OnResize(z.HandleResize)
	return z
}

// HandleResize re-measures the surface and triggers hub.Resize.
func (z *Sizes) HandleResize() {
	size := z.measure()
	z.mu.Lock()
	z.size = size
	z.mu.Unlock()

	z.logger.Debug("resize",
		log.Int("width", size.Width),
		log.Int("height", size.Height),
		log.Float64("pixel_ratio", size.PixelRatio))
	if err := z.Trigger(hub.Resize, size); err != nil {
		z.logger.Error("resize handler failed", log.Error(err))
	}
}

func (z *Sizes) Size() Size {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.size
}

func (z *Sizes) Width() int             { return z.Size().Width }
func (z *Sizes) Height() int            { return z.Size().Height }
func (z *Sizes) PixelRatio() float64    { return z.Size().PixelRatio }
func (z *Sizes) Aspect() float64        { return z.Size().Aspect() }
func (z *Sizes) MaxPixelRatio() float64 { return z.maxRatio }

// Close stops listening to the surface.
func (z *Sizes) Close() {
	if z.detach != nil {
		z.detach()
		z.detach = nil
	}
}

func (z *Sizes) measure() Size {
	w, h := z.surface.Size()
	ratio := z.surface.DevicePixelRatio()
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}
	return Size{Width: w, Height: h, PixelRatio: math.Min(ratio, z.maxRatio)}
}
