// Package experience is the composition root: it owns every long-lived
// component, forwards resize and tick events to them in a fixed order and
// releases everything on teardown.
package experience

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zeusync/experience/internal/core/assets"
	"github.com/zeusync/experience/internal/core/clock"
	"github.com/zeusync/experience/internal/core/events/hub"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/scene"
	"github.com/zeusync/experience/internal/core/surface"
	"github.com/zeusync/experience/internal/core/viewport"
)

var (
	ErrDestroyed        = errors.New("experience destroyed")
	ErrMissingComponent = errors.New("missing component")
)

type State uint8

const (
	Uninitialized State = iota
	Active
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

type CameraRig interface {
	Resize()
	Update()
	Dispose()
}

type RenderBackend interface {
	Resize()
	Update() error
	Dispose()
}

type SceneGraphRoot interface {
	Update()
}

type DebugUI interface {
	Active() bool
	Destroy()
}

// Components lists what an Experience owns, in construction order.
type Components struct {
	Surface   surface.Surface
	Debug     DebugUI
	Sizes     *viewport.Sizes
	Clock     *clock.Clock
	Scene     *scene.Scene
	Resources *assets.Loader
	Camera    CameraRig
	Renderer  RenderBackend
	World     SceneGraphRoot
}

func (c Components) validate() error {
	missing := func(name string) error {
		return fmt.Errorf("%w: %s", ErrMissingComponent, name)
	}
	switch {
	case c.Surface == nil:
		return missing("surface")
	case c.Sizes == nil:
		return missing("sizes")
	case c.Clock == nil:
		return missing("clock")
	case c.Scene == nil:
		return missing("scene")
	case c.Resources == nil:
		return missing("resources")
	case c.Camera == nil:
		return missing("camera")
	case c.Renderer == nil:
		return missing("renderer")
	case c.World == nil:
		return missing("world")
	}
	return nil
}

type Experience struct {
	Components

	logger log.Log

	mu        sync.Mutex
	state     State
	resizeSub hub.Subscription
	tickSub   hub.Subscription
}

// New subscribes to the resize and tick sources and starts loading resources.
func New(ctx context.Context, c Components, logger log.Log) (*Experience, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	e := &Experience{
		Components: c,
		logger:     logger.Named("experience").With(log.String("surface", c.Surface.ID())),
	}

	var err error
	if e.resizeSub, err = c.Sizes.On(hub.Resize, func(hub.Event) error {
		e.Resize()
		return nil
	}); err != nil {
		e.abort()
		return nil, fmt.Errorf("subscribe resize: %w", err)
	}
	if e.tickSub, err = c.Clock.On(hub.Tick, func(hub.Event) error {
		e.Update()
		return nil
	}); err != nil {
		e.abort()
		return nil, fmt.Errorf("subscribe tick: %w", err)
	}
	if err = c.Resources.Start(ctx); err != nil {
		e.abort()
		return nil, fmt.Errorf("start resources: %w", err)
	}

	e.state = Active
	e.logger.Info("experience active",
		log.Int("width", c.Sizes.Width()),
		log.Int("height", c.Sizes.Height()),
		log.Bool("debug", c.Debug != nil && c.Debug.Active()),
	)
	return e, nil
}

// abort undoes a partial New: no subscription, frame request or surface
// listener survives it.
func (e *Experience) abort() {
	e.Sizes.Unsubscribe(e.resizeSub)
	e.Clock.Unsubscribe(e.tickSub)
	e.Clock.Stop()
	e.Sizes.Close()
}

func (e *Experience) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Resize updates the camera projection before the renderer viewport.
func (e *Experience) Resize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Active {
		e.logger.Error("resize after teardown", log.String("state", e.state.String()))
		return
	}
	e.Camera.Resize()
	e.Renderer.Resize()
}

// Update steps the camera, then the world, then draws.
func (e *Experience) Update() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Active {
		e.logger.Error("update after teardown", log.String("state", e.state.String()))
		return
	}
	e.Camera.Update()
	e.World.Update()
	if err := e.Renderer.Update(); err != nil {
		e.logger.Error("render failed", log.Error(err), log.Uint64("frame", e.Clock.Frames()))
	}
}

// Teardown stops event delivery and releases owned resources. Calling it
// again does nothing.
func (e *Experience) Teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Destroyed {
		return
	}
	e.state = Destroyed

	e.resizeSub.Cancel()
	e.tickSub.Cancel()
	e.Sizes.Off(hub.Resize)
	e.Clock.Off(hub.Tick)
	e.Clock.Stop()
	e.Sizes.Close()
	e.Resources.Close()

	released := e.Scene.Dispose()
	e.Camera.Dispose()
	e.Renderer.Dispose()

	if e.Debug != nil && e.Debug.Active() {
		e.Debug.Destroy()
	}
	e.logger.Info("experience destroyed", log.Int("released", released))
}
