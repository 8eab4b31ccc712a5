// Package world builds the renderable content once assets are ready and
// animates it every frame.
package world

import (
	"github.com/zeusync/experience/internal/core/assets"
	"github.com/zeusync/experience/internal/core/clock"
	"github.com/zeusync/experience/internal/core/events/hub"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/scene"
	"github.com/zeusync/experience/internal/debug"
)

// Asset names the world expects in the manifest.
const (
	EnvironmentMapTexture = "environmentMapTexture"
	GrassColorTexture     = "grassColorTexture"
	GrassNormalTexture    = "grassNormalTexture"
	FoxModel              = "foxModel"
)

type World struct {
	scene     *scene.Scene
	resources *assets.Loader
	clock     *clock.Clock
	debug     *debug.Panel
	logger    log.Log

	Floor       *Floor
	Fox         *Fox
	Environment *Environment

	ready bool
}

func New(sc *scene.Scene, resources *assets.Loader, clk *clock.Clock, panel *debug.Panel, logger log.Log) (*World, error) {
	w := &World{
		scene:     sc,
		resources: resources,
		clock:     clk,
		debug:     panel,
		logger:    logger.Named("world"),
	}
	if _, err := resources.On(hub.Ready, func(hub.Event) error {
		w.build()
		return nil
	}); err != nil {
		return nil, err
	}
	return w, nil
}

// build runs once on the ready event. The environment goes last so its map
// reaches the floor and fox materials.
func (w *World) build() {
	if w.ready {
		return
	}
	w.ready = true

	w.Floor = newFloor(w.scene, w.resources, w.logger)
	w.Fox = newFox(w.scene, w.resources, w.debug, w.logger)
	w.Environment = newEnvironment(w.scene, w.resources, w.debug, w.logger)
	w.logger.Info("world built", log.Int("nodes", w.scene.Count()))
}

func (w *World) Ready() bool { return w.ready }

// Update advances per-frame animation state.
func (w *World) Update() {
	if w.Fox != nil {
		w.Fox.Update(w.clock.Delta())
	}
}

func texture(res *assets.Loader, name string, logger log.Log) *scene.Texture {
	t, ok := res.Texture(name)
	if !ok {
		logger.Warn("texture missing", log.String("name", name))
		return nil
	}
	return scene.NewTexture(name, t.Image)
}
