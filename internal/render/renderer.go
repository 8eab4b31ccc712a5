// Package render binds the output surface to a backend and draws one frame
// per update.
package render

import (
	"errors"
	"fmt"

	"github.com/zeusync/experience/internal/camera"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/scene"
	"github.com/zeusync/experience/internal/core/surface"
	"github.com/zeusync/experience/internal/core/viewport"
)

type ToneMapping uint8

const (
	NoToneMapping ToneMapping = iota
	LinearToneMapping
	ReinhardToneMapping
	CineonToneMapping
	ACESFilmicToneMapping
)

type ShadowType uint8

const (
	BasicShadowMap ShadowType = iota
	PCFShadowMap
	PCFSoftShadowMap
)

type Options struct {
	Antialias              bool
	PhysicallyCorrectLight bool
	OutputSRGB             bool
	ToneMapping            ToneMapping
	ToneMappingExposure    float32
	ShadowsEnabled         bool
	ShadowType             ShadowType
	ClearColor             uint32
}

// DefaultOptions are the settings the world is lit for.
func DefaultOptions() Options {
	return Options{
		Antialias:              true,
		PhysicallyCorrectLight: true,
		OutputSRGB:             true,
		ToneMapping:            CineonToneMapping,
		ToneMappingExposure:    1.75,
		ShadowsEnabled:         true,
		ShadowType:             PCFSoftShadowMap,
		ClearColor:             0x211d20,
	}
}

// StatsSink receives the stats of every drawn frame.
type StatsSink interface {
	PublishFrame(FrameStats)
}

type Renderer struct {
	surface surface.Surface
	backend Backend
	sizes   *viewport.Sizes
	scene   *scene.Scene
	camera  *camera.Rig
	sink    StatsSink
	logger  log.Log

	last     FrameStats
	disposed bool
}

// New binds surface to backend once and applies the current size.
func New(s surface.Surface, backend Backend, opts Options, sizes *viewport.Sizes, sc *scene.Scene, cam *camera.Rig, logger log.Log) (*Renderer, error) {
	if err := backend.Configure(opts); err != nil {
		return nil, fmt.Errorf("configure backend: %w", err)
	}
	r := &Renderer{
		surface: s,
		backend: backend,
		sizes:   sizes,
		scene:   sc,
		camera:  cam,
		logger:  logger.Named("renderer").With(log.String("surface", s.ID())),
	}
	r.Resize()
	return r, nil
}

// SetStatsSink forwards frame stats, e.g. to the debug panel.
func (r *Renderer) SetStatsSink(sink StatsSink) {
	r.sink = sink
}

// Resize applies the viewport size, then the capped pixel ratio.
func (r *Renderer) Resize() {
	size := r.sizes.Size()
	if err := errors.Join(
		r.backend.SetSize(size.Width, size.Height),
		r.backend.SetPixelRatio(size.PixelRatio),
	); err != nil {
		r.logger.Error("resize failed", log.Error(err))
	}
}

// Update draws one frame.
func (r *Renderer) Update() error {
	stats, err := r.backend.Render(r.scene, r.camera.Instance)
	if err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	r.last = stats
	if r.sink != nil {
		r.sink.PublishFrame(stats)
	}
	return nil
}

func (r *Renderer) LastFrame() FrameStats { return r.last }

// Dispose releases the backend and the output surface.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	if err := errors.Join(r.backend.Dispose(), r.surface.Release()); err != nil {
		r.logger.Warn("dispose", log.Error(err))
	}
}
