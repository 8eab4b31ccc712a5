package assets

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/experience/internal/core/events/hub"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/runloop"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func glbBytes(doc string, bin []byte) []byte {
	pad := func(b []byte, fill byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, fill)
		}
		return b
	}
	jsonChunk := pad([]byte(doc), ' ')
	binChunk := pad(bin, 0)

	var buf bytes.Buffer
	total := glbHeader + 8 + len(jsonChunk)
	if len(binChunk) > 0 {
		total += 8 + len(binChunk)
	}
	_ = binary.Write(&buf, binary.LittleEndian, []uint32{glbMagic, 2, uint32(total)})
	_ = binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(jsonChunk)), glbChunkJSON})
	buf.Write(jsonChunk)
	if len(binChunk) > 0 {
		_ = binary.Write(&buf, binary.LittleEndian, []uint32{uint32(len(binChunk)), glbChunkBIN})
		buf.Write(binChunk)
	}
	return buf.Bytes()
}

const foxDoc = `{"asset":{"version":"2.0","generator":"test"},
"nodes":[{"name":"root"},{"name":"fox"}],
"meshes":[{"name":"fox"}],
"accessors":[{"max":[3.4]},{"max":[0.7]},{"max":[1.5]},{}],
"animations":[
 {"name":"Survey","channels":[{},{}],"samplers":[{"input":0},{"input":1}]},
 {"name":"Walk","channels":[{}],"samplers":[{"input":1}]},
 {"name":"Run","channels":[],"samplers":[{"input":3},{"input":9}]}]}`

type countingFetcher struct {
	inner Fetcher
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	c.mu.Lock()
	c.calls[path]++
	c.mu.Unlock()
	return c.inner.Fetch(ctx, path)
}

type recorder struct {
	progress []Progress
	errors   []*LoadError
	ready    int
}

func (r *recorder) attach(t *testing.T, l *Loader) {
	t.Helper()
	_, err := l.On(hub.Progress, func(e hub.Event) error { r.progress = append(r.progress, e.Data.(Progress)); return nil })
	require.NoError(t, err)
	_, err = l.On(hub.Error, func(e hub.Event) error { r.errors = append(r.errors, e.Data.(*LoadError)); return nil })
	require.NoError(t, err)
	_, err = l.On(hub.Ready, func(hub.Event) error { r.ready++; return nil })
	require.NoError(t, err)
}

func run(t *testing.T, l *Loader, sched *runloop.Manual) {
	t.Helper()
	require.NoError(t, l.Start(context.Background()))
	l.Wait()
	sched.Drain()
}

func TestLoaderReadyAfterAllSucceed(t *testing.T) {
	fsys := fstest.MapFS{
		"textures/dirt/color.png":  {Data: pngBytes(t, 4, 2)},
		"textures/dirt/normal.png": {Data: pngBytes(t, 2, 2)},
		"models/Fox/glTF-Binary/Fox.glb": {Data: glbBytes(foxDoc, []byte{1, 2, 3})},
	}
	cube := make(Paths, CubeFaces)
	for i := range cube {
		name := "textures/environmentMap/" + []string{"px", "nx", "py", "ny", "pz", "nz"}[i] + ".png"
		fsys[name] = &fstest.MapFile{Data: pngBytes(t, 1, 1)}
		cube[i] = name
	}
	sources := []Source{
		{Name: "environmentMapTexture", Type: TypeCubeTexture, Path: cube},
		{Name: "grassColorTexture", Type: TypeTexture, Path: Paths{"textures/dirt/color.png"}},
		{Name: "grassNormalTexture", Type: TypeTexture, Path: Paths{"textures/dirt/normal.png"}},
		{Name: "foxModel", Type: TypeModel, Path: Paths{"models/Fox/glTF-Binary/Fox.glb"}},
	}

	sched := runloop.NewManual(time.Unix(0, 0))
	l, err := NewLoader(sources, FSFetcher{FS: fsys}, sched, 2, log.NewNop())
	require.NoError(t, err)
	rec := &recorder{}
	rec.attach(t, l)

	require.NoError(t, l.Start(context.Background()))
	l.Wait()
	assert.False(t, l.IsReady(), "completions are delivered on the scheduler thread")
	assert.Equal(t, 0, l.Loaded())

	sched.Drain()
	sched.Drain()

	assert.Equal(t, 1, rec.ready)
	assert.True(t, l.IsReady())
	require.Len(t, rec.progress, 4)
	for i, p := range rec.progress {
		assert.Equal(t, i+1, p.Loaded)
		assert.Equal(t, 4, p.ToLoad)
		assert.LessOrEqual(t, p.Loaded, p.ToLoad)
	}
	assert.Empty(t, rec.errors)

	items := l.Items()
	require.Len(t, items, 4)
	for _, s := range sources {
		require.Contains(t, items, s.Name)
		assert.NotZero(t, items[s.Name].Checksum)
	}

	tex, ok := l.Texture("grassColorTexture")
	require.True(t, ok)
	w, h := tex.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, "png", tex.Format)

	env, ok := l.CubeTexture("environmentMapTexture")
	require.True(t, ok)
	for _, f := range env.Faces {
		assert.NotNil(t, f)
	}

	fox, ok := l.Model("foxModel")
	require.True(t, ok)
	assert.Equal(t, []string{"root", "fox"}, fox.Nodes)
	assert.Equal(t, []Animation{{"Survey", 2, 3.4}, {"Walk", 1, 0.7}, {"Run", 0, 0}}, fox.Animations)
	assert.Equal(t, []byte{1, 2, 3, 0}, fox.Binary)

	_, ok = l.Texture("foxModel")
	assert.False(t, ok)
	assert.ErrorIs(t, l.Start(context.Background()), ErrAlreadyStarted)
}

func TestLoaderFailureIsBestEffort(t *testing.T) {
	fsys := fstest.MapFS{
		"ok.png":  {Data: pngBytes(t, 1, 1)},
		"bad.png": {Data: []byte("not an image")},
	}
	sources := []Source{
		{Name: "ok", Type: TypeTexture, Path: Paths{"ok.png"}},
		{Name: "missing", Type: TypeTexture, Path: Paths{"missing.png"}},
		{Name: "bad", Type: TypeTexture, Path: Paths{"bad.png"}},
	}
	sched := runloop.NewManual(time.Unix(0, 0))
	l, err := NewLoader(sources, FSFetcher{FS: fsys}, sched, 1, log.NewNop())
	require.NoError(t, err)
	rec := &recorder{}
	rec.attach(t, l)
	run(t, l, sched)

	assert.Equal(t, 1, rec.ready)
	assert.Len(t, rec.errors, 2)
	assert.Len(t, l.Items(), 1)
	failed := l.Failed()
	assert.Contains(t, failed, "missing")
	assert.Contains(t, failed, "bad")
	last := rec.progress[len(rec.progress)-1]
	assert.Equal(t, Progress{Name: last.Name, Loaded: 1, Failed: 2, ToLoad: 3}, last)
}

func TestLoaderEmptyManifestIsReady(t *testing.T) {
	sched := runloop.NewManual(time.Unix(0, 0))
	l, err := NewLoader(nil, FSFetcher{FS: fstest.MapFS{}}, sched, 0, log.NewNop())
	require.NoError(t, err)
	rec := &recorder{}
	rec.attach(t, l)
	run(t, l, sched)
	assert.Equal(t, 1, rec.ready)
	assert.Empty(t, l.Items())
}

func TestLoaderFetchesSharedPathOnce(t *testing.T) {
	fetcher := &countingFetcher{
		inner: FSFetcher{FS: fstest.MapFS{"shared.png": {Data: pngBytes(t, 1, 1)}}},
		calls: map[string]int{},
	}
	sources := []Source{
		{Name: "a", Type: TypeTexture, Path: Paths{"shared.png"}},
		{Name: "b", Type: TypeTexture, Path: Paths{"shared.png"}},
	}
	sched := runloop.NewManual(time.Unix(0, 0))
	l, err := NewLoader(sources, fetcher, sched, 1, log.NewNop())
	require.NoError(t, err)
	run(t, l, sched)

	assert.Equal(t, 1, fetcher.calls["shared.png"])
	a, _ := l.Get("a")
	b, _ := l.Get("b")
	assert.Equal(t, a.Checksum, b.Checksum)
}

func TestLoaderCloseDropsSubscribers(t *testing.T) {
	sched := runloop.NewManual(time.Unix(0, 0))
	l, err := NewLoader([]Source{{Name: "a", Type: TypeTexture, Path: Paths{"a.png"}}},
		FSFetcher{FS: fstest.MapFS{"a.png": {Data: pngBytes(t, 1, 1)}}}, sched, 1, log.NewNop())
	require.NoError(t, err)
	rec := &recorder{}
	rec.attach(t, l)
	require.NoError(t, l.Start(context.Background()))
	l.Wait()
	l.Close()
	sched.Drain()
	assert.Equal(t, 0, rec.ready)
	assert.Equal(t, 0, l.Subscribers(hub.Ready))
}

func TestLoadManifestYAML(t *testing.T) {
	src := `
sources:
  - name: environmentMapTexture
    type: cubeTexture
    path: [px.jpg, nx.jpg, py.jpg, ny.jpg, pz.jpg, nz.jpg]
  - name: grassColorTexture
    type: texture
    path: textures/dirt/color.jpg
`
	sources, err := LoadManifest(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Len(t, sources[0].Path, 6)
	assert.Equal(t, Paths{"textures/dirt/color.jpg"}, sources[1].Path)

	empty, err := LoadManifest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		sources []Source
		want    error
	}{
		"duplicate": {[]Source{
			{Name: "a", Type: TypeTexture, Path: Paths{"x"}},
			{Name: "a", Type: TypeModel, Path: Paths{"y"}},
		}, ErrDuplicateName},
		"no name":    {[]Source{{Type: TypeTexture, Path: Paths{"x"}}}, ErrEmptyName},
		"bad type":   {[]Source{{Name: "a", Type: "sound", Path: Paths{"x"}}}, ErrUnknownType},
		"cube faces": {[]Source{{Name: "a", Type: TypeCubeTexture, Path: Paths{"x"}}}, ErrPathCount},
		"two paths":  {[]Source{{Name: "a", Type: TypeTexture, Path: Paths{"x", "y"}}}, ErrPathCount},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tc.sources), tc.want)
		})
	}
}

func TestDecodeModel(t *testing.T) {
	m, err := decodeModel("plain.gltf", []byte(`{"asset":{"version":"2.0"},"meshes":[{"name":"m"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, m.Meshes)
	assert.Nil(t, m.Binary)

	_, err = decodeModel("short.glb", []byte{1, 2})
	assert.ErrorIs(t, err, ErrInvalidModel)

	bad := glbBytes(foxDoc, nil)
	binary.LittleEndian.PutUint32(bad[0:4], 0)
	_, err = decodeModel("magic.glb", bad)
	assert.ErrorIs(t, err, ErrInvalidModel)

	v1 := glbBytes(foxDoc, nil)
	binary.LittleEndian.PutUint32(v1[4:8], 1)
	_, err = decodeModel("v1.glb", v1)
	assert.ErrorIs(t, err, ErrInvalidModel)

	trunc := glbBytes(foxDoc, nil)
	_, err = decodeModel("trunc.glb", trunc[:len(trunc)-4])
	assert.ErrorIs(t, err, ErrInvalidModel)
}
