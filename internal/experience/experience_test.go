package experience

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/experience/internal/core/assets"
	"github.com/zeusync/experience/internal/core/clock"
	"github.com/zeusync/experience/internal/core/events/hub"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/runloop"
	"github.com/zeusync/experience/internal/core/scene"
	"github.com/zeusync/experience/internal/core/surface"
	"github.com/zeusync/experience/internal/core/viewport"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeCamera struct {
	rec      *recorder
	disposed int
}

func (c *fakeCamera) Resize()  { c.rec.add("camera.resize") }
func (c *fakeCamera) Update()  { c.rec.add("camera.update") }
func (c *fakeCamera) Dispose() { c.disposed++ }

type fakeRenderer struct {
	rec      *recorder
	surface  surface.Surface
	disposed int
}

func (r *fakeRenderer) Resize() { r.rec.add("renderer.resize") }

func (r *fakeRenderer) Update() error {
	r.rec.add("renderer.update")
	return nil
}

func (r *fakeRenderer) Dispose() {
	r.disposed++
	_ = r.surface.Release()
}

type fakeWorld struct {
	rec     *recorder
	clock   *clock.Clock
	elapsed []time.Duration
}

func (w *fakeWorld) Update() {
	w.rec.add("world.update")
	w.elapsed = append(w.elapsed, w.clock.Elapsed())
}

type fakeDebug struct {
	active    bool
	destroyed int
}

func (d *fakeDebug) Active() bool { return d.active }
func (d *fakeDebug) Destroy()     { d.destroyed++ }

type fixture struct {
	sched    *runloop.Manual
	surface  *surface.Headless
	rec      *recorder
	camera   *fakeCamera
	renderer *fakeRenderer
	world    *fakeWorld
	debug    *fakeDebug
	comps    Components
}

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func twoTextures(t *testing.T) (fstest.MapFS, []assets.Source) {
	fsys := fstest.MapFS{
		"textures/a.png": {Data: pngData(t)},
		"textures/b.png": {Data: pngData(t)},
	}
	sources := []assets.Source{
		{Name: "a", Type: assets.TypeTexture, Path: assets.Paths{"textures/a.png"}},
		{Name: "b", Type: assets.TypeTexture, Path: assets.Paths{"textures/b.png"}},
	}
	return fsys, sources
}

func newFixture(t *testing.T, surfaceID string) *fixture {
	t.Helper()
	f := &fixture{
		sched:   runloop.NewManual(time.Unix(100, 0)),
		surface: surface.NewHeadless(surfaceID, 800, 600, 3),
		rec:     &recorder{},
		debug:   &fakeDebug{active: true},
	}
	fsys, sources := twoTextures(t)

	sizes := viewport.New(f.surface, 2, log.NewNop())
	clk := clock.New(f.sched, log.NewNop())
	res, err := assets.NewLoader(sources, assets.FSFetcher{FS: fsys}, f.sched, 2, log.NewNop())
	require.NoError(t, err)

	f.camera = &fakeCamera{rec: f.rec}
	f.renderer = &fakeRenderer{rec: f.rec, surface: f.surface}
	f.world = &fakeWorld{rec: f.rec, clock: clk}
	f.comps = Components{
		Surface:   f.surface,
		Debug:     f.debug,
		Sizes:     sizes,
		Clock:     clk,
		Scene:     scene.New(),
		Resources: res,
		Camera:    f.camera,
		Renderer:  f.renderer,
		World:     f.world,
	}
	return f
}

func (f *fixture) build(t *testing.T) *Experience {
	t.Helper()
	e, err := New(context.Background(), f.comps, log.NewNop())
	require.NoError(t, err)
	return e
}

func TestNewRejectsMissingComponents(t *testing.T) {
	f := newFixture(t, "canvas")
	f.comps.World = nil

	_, err := New(context.Background(), f.comps, log.NewNop())
	assert.ErrorIs(t, err, ErrMissingComponent)
}

func TestNewFailureStopsClockAndDetaches(t *testing.T) {
	f := newFixture(t, "canvas")
	require.NoError(t, f.comps.Resources.Start(context.Background()))

	_, err := New(context.Background(), f.comps, log.NewNop())
	require.ErrorIs(t, err, assets.ErrAlreadyStarted)

	assert.False(t, f.comps.Clock.Running())
	assert.Zero(t, f.sched.Pending())
	assert.Zero(t, f.surface.Listeners())
	assert.Zero(t, f.comps.Sizes.Subscribers(hub.Resize))
	assert.Zero(t, f.comps.Clock.Subscribers(hub.Tick))

	f.sched.Advance(16 * time.Millisecond)
	assert.Empty(t, f.rec.list())
}

func TestNewSubscribesAndLoads(t *testing.T) {
	f := newFixture(t, "canvas")
	e := f.build(t)

	assert.Equal(t, Active, e.State())
	assert.Equal(t, 1, e.Sizes.Subscribers(hub.Resize))
	assert.Equal(t, 1, e.Clock.Subscribers(hub.Tick))

	e.Resources.Wait()
	f.sched.Drain()
	assert.True(t, e.Resources.IsReady())
	assert.Len(t, e.Resources.Items(), 2)
}

func TestResizeOrdersCameraBeforeRenderer(t *testing.T) {
	f := newFixture(t, "canvas")
	e := f.build(t)

	e.Resize()
	assert.Equal(t, []string{"camera.resize", "renderer.resize"}, f.rec.list())

	f.rec.reset()
	f.surface.Resize(1024, 768, 1)
	assert.Equal(t, []string{"camera.resize", "renderer.resize"}, f.rec.list())
}

func TestUpdateOrder(t *testing.T) {
	f := newFixture(t, "canvas")
	f.build(t)

	f.sched.Advance(16 * time.Millisecond)
	assert.Equal(t, []string{"camera.update", "world.update", "renderer.update"}, f.rec.list())
}

func TestTeardownDisposesOnce(t *testing.T) {
	f := newFixture(t, "canvas")
	sc := f.comps.Scene

	hooks := map[string]int{}
	hook := func(name string) func() { return func() { hooks[name]++ } }

	floorGeo := scene.NewCircleGeometry(5, 64)
	floorGeo.OnDispose(hook("floor.geometry"))
	floorMat := scene.NewStandardMaterial()
	floorMat.OnDispose(hook("floor.material"))
	boxGeo := scene.NewBoxGeometry(1, 1, 1)
	boxGeo.OnDispose(hook("box.geometry"))
	boxMat := scene.NewStandardMaterial()
	boxMat.OnDispose(hook("box.material"))

	group := scene.NewGroup("props")
	group.Add(scene.NewMesh("box", boxGeo, boxMat))
	sc.Add(scene.NewMesh("floor", floorGeo, floorMat), group)

	e := f.build(t)
	e.Teardown()

	assert.Equal(t, map[string]int{
		"floor.geometry": 1,
		"floor.material": 1,
		"box.geometry":   1,
		"box.material":   1,
	}, hooks)
	assert.Equal(t, Destroyed, e.State())
	assert.Equal(t, 1, f.camera.disposed)
	assert.Equal(t, 1, f.renderer.disposed)
	assert.Equal(t, 1, f.debug.destroyed)
	assert.True(t, f.surface.Released())
	assert.Zero(t, f.surface.Listeners())
	assert.False(t, e.Clock.Running())

	e.Teardown()
	assert.Equal(t, 1, hooks["floor.geometry"])
	assert.Equal(t, 1, hooks["box.material"])
	assert.Equal(t, 1, f.camera.disposed)
	assert.Equal(t, 1, f.renderer.disposed)
	assert.Equal(t, 1, f.debug.destroyed)
}

func TestTeardownSkipsInactiveDebug(t *testing.T) {
	f := newFixture(t, "canvas")
	f.debug.active = false
	f.build(t).Teardown()
	assert.Zero(t, f.debug.destroyed)
}

func TestCallsAfterTeardownAreIgnored(t *testing.T) {
	f := newFixture(t, "canvas")
	e := f.build(t)
	e.Teardown()
	f.rec.reset()

	assert.NotPanics(t, func() {
		e.Resize()
		e.Update()
		f.surface.Resize(10, 10, 1)
		f.sched.Advance(16 * time.Millisecond)
	})
	assert.Empty(t, f.rec.list())
}

func TestEndToEndFrames(t *testing.T) {
	f := newFixture(t, "canvas")
	e := f.build(t)

	e.Resources.Wait()
	for range 3 {
		f.sched.Advance(16 * time.Millisecond)
	}

	assert.True(t, e.Resources.IsReady())
	require.Len(t, f.world.elapsed, 3)
	for i := 1; i < len(f.world.elapsed); i++ {
		assert.Greater(t, f.world.elapsed[i], f.world.elapsed[i-1])
	}
	assert.Equal(t, 48*time.Millisecond, f.world.elapsed[2])

	e.Teardown()
	f.sched.Advance(16 * time.Millisecond)
	f.sched.Advance(16 * time.Millisecond)
	assert.Len(t, f.world.elapsed, 3)
	assert.Zero(t, f.sched.Pending())
}
