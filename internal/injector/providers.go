package injector

import (
	"fmt"
	"os"

	"github.com/google/wire"

	"github.com/zeusync/experience/internal/camera"
	"github.com/zeusync/experience/internal/config"
	"github.com/zeusync/experience/internal/core/assets"
	"github.com/zeusync/experience/internal/core/clock"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/runloop"
	"github.com/zeusync/experience/internal/core/scene"
	"github.com/zeusync/experience/internal/core/surface"
	"github.com/zeusync/experience/internal/core/viewport"
	"github.com/zeusync/experience/internal/debug"
	"github.com/zeusync/experience/internal/experience"
	"github.com/zeusync/experience/internal/render"
	"github.com/zeusync/experience/internal/world"
)

// ExperienceSet builds every component in dependency order: debug panel,
// sizes, clock, scene, resources, camera, renderer, world.
var ExperienceSet = wire.NewSet(
	ProvidePanel,
	ProvideSizes,
	ProvideClock,
	scene.New,
	ProvideSources,
	ProvideFetcher,
	ProvideLoader,
	camera.NewRig,
	ProvideRenderer,
	world.New,
	ProvideComponents,
	experience.New,
)

func ProvidePanel(cfg config.Config, sched runloop.Scheduler, logger log.Log) *debug.Panel {
	return debug.New(cfg.Debug, sched, logger)
}

// ProvideSizes attaches to the surface resize signal; the cleanup detaches it
// when a later provider fails.
func ProvideSizes(s surface.Surface, cfg config.Config, logger log.Log) (*viewport.Sizes, func()) {
	sizes := viewport.New(s, cfg.MaxPixelRatio, logger)
	return sizes, sizes.Close
}

// ProvideClock schedules the first frame; the cleanup withdraws it.
func ProvideClock(sched runloop.Scheduler, logger log.Log) (*clock.Clock, func()) {
	clk := clock.New(sched, logger)
	return clk, clk.Stop
}

// ProvideSources reads the asset manifest named by the config.
func ProvideSources(cfg config.Config) ([]assets.Source, error) {
	f, err := os.Open(cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return assets.LoadManifest(f)
}

func ProvideFetcher(cfg config.Config) assets.Fetcher {
	return assets.FSFetcher{FS: os.DirFS(cfg.AssetRoot)}
}

func ProvideLoader(cfg config.Config, sources []assets.Source, fetcher assets.Fetcher, sched runloop.Scheduler, logger log.Log) (*assets.Loader, error) {
	return assets.NewLoader(sources, fetcher, sched, cfg.LoaderConcurrency, logger)
}

// ProvideRenderer binds the surface and, in debug mode, streams frame stats
// to the panel.
func ProvideRenderer(s surface.Surface, backend render.Backend, sizes *viewport.Sizes, sc *scene.Scene, rig *camera.Rig, panel *debug.Panel, logger log.Log) (*render.Renderer, error) {
	r, err := render.New(s, backend, render.DefaultOptions(), sizes, sc, rig, logger)
	if err != nil {
		return nil, err
	}
	if panel.Active() {
		r.SetStatsSink(panel)
	}
	return r, nil
}

func ProvideComponents(
	s surface.Surface,
	panel *debug.Panel,
	sizes *viewport.Sizes,
	clk *clock.Clock,
	sc *scene.Scene,
	resources *assets.Loader,
	rig *camera.Rig,
	renderer *render.Renderer,
	w *world.World,
) experience.Components {
	return experience.Components{
		Surface:   s,
		Debug:     panel,
		Sizes:     sizes,
		Clock:     clk,
		Scene:     sc,
		Resources: resources,
		Camera:    rig,
		Renderer:  renderer,
		World:     w,
	}
}
