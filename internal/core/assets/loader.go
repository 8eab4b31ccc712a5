// Package assets loads a manifest of textures, cube textures and models in the
// background and announces completion on the scheduler thread.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/zeusync/experience/internal/core/events/hub"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/runloop"
)

var ErrAlreadyStarted = errors.New("loader already started")

// DefaultConcurrency bounds parallel fetches when none is configured.
const DefaultConcurrency = 4

// Fetcher returns the raw bytes stored at path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// FSFetcher reads from a file system, usually os.DirFS of the asset root.
type FSFetcher struct {
	FS fs.FS
}

func (f FSFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(f.FS, path)
}

// Loader fetches every manifest entry concurrently. Completions are posted to
// the scheduler, so counters, Items and events are only touched on the loop
// thread.
//
// A failed entry emits hub.Error and counts as settled; hub.Ready fires once
// every entry has settled, whether or not all of them succeeded.
type Loader struct {
	*hub.Hub

	sources []Source
	fetcher Fetcher
	sched   runloop.Scheduler
	limit   int
	logger  log.Log

	flight  singleflight.Group
	cacheMu sync.Mutex
	cache   map[string][]byte
	wg      sync.WaitGroup
	cancel  context.CancelFunc

	mu      sync.RWMutex
	started bool
	items   map[string]*Asset
	failed  map[string]error
	settled int
	ready   bool
}

func NewLoader(sources []Source, fetcher Fetcher, sched runloop.Scheduler, limit int, logger log.Log) (*Loader, error) {
	if err := Validate(sources); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Loader{
		Hub:     hub.New("resources"),
		sources: sources,
		fetcher: fetcher,
		sched:   sched,
		limit:   limit,
		logger:  logger.Named("resources"),
		items:   make(map[string]*Asset, len(sources)),
		failed:  make(map[string]error),
		cache:   make(map[string][]byte),
	}, nil
}

// Start dispatches every load and returns immediately.
func (l *Loader) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return ErrAlreadyStarted
	}
	l.started = true
	l.mu.Unlock()

	if len(l.sources) == 0 {
		l.sched.Post(l.finish)
		return nil
	}

	ctx, l.cancel = context.WithCancel(ctx)
	l.logger.Info("loading assets", log.Int("to_load", len(l.sources)), log.Int("concurrency", l.limit))

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		g := errgroup.Group{}
		g.SetLimit(l.limit)
		for _, src := range l.sources {
			g.Go(func() error {
				asset, err := l.load(ctx, src)
				l.sched.Post(func() { l.complete(src, asset, err) })
				return nil
			})
		}
		_ = g.Wait()

		l.cacheMu.Lock()
		clear(l.cache)
		l.cacheMu.Unlock()
	}()
	return nil
}

// Wait blocks until every fetch has finished and its completion was posted.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Close cancels fetches still in flight and drops every subscriber.
func (l *Loader) Close() {
	if l.cancel != nil {
		l.cancel()
	}
	l.Off(hub.Progress)
	l.Off(hub.Error)
	l.Off(hub.Ready)
}

func (l *Loader) ToLoad() int { return len(l.sources) }

func (l *Loader) Loaded() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *Loader) IsReady() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ready
}

// Items returns a copy of the loaded assets keyed by manifest name.
func (l *Loader) Items() map[string]*Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]*Asset, len(l.items))
	for k, v := range l.items {
		out[k] = v
	}
	return out
}

// Failed returns the load error of each failed entry.
func (l *Loader) Failed() map[string]error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]error, len(l.failed))
	for k, v := range l.failed {
		out[k] = v
	}
	return out
}

func (l *Loader) Get(name string) (*Asset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.items[name]
	return a, ok
}

func (l *Loader) Texture(name string) (*Texture, bool) {
	a, ok := l.Get(name)
	if !ok {
		return nil, false
	}
	t, ok := a.Value.(*Texture)
	return t, ok
}

func (l *Loader) CubeTexture(name string) (*CubeTexture, bool) {
	a, ok := l.Get(name)
	if !ok {
		return nil, false
	}
	t, ok := a.Value.(*CubeTexture)
	return t, ok
}

func (l *Loader) Model(name string) (*Model, bool) {
	a, ok := l.Get(name)
	if !ok {
		return nil, false
	}
	m, ok := a.Value.(*Model)
	return m, ok
}

func (l *Loader) complete(src Source, asset *Asset, err error) {
	l.mu.Lock()
	if err != nil {
		l.failed[src.Name] = err
	} else {
		l.items[src.Name] = asset
	}
	l.settled++
	progress := Progress{Name: src.Name, Loaded: len(l.items), Failed: len(l.failed), ToLoad: len(l.sources)}
	l.mu.Unlock()

	if err != nil {
		l.logger.Error("asset failed", log.String("name", src.Name), log.String("type", string(src.Type)), log.Error(err))
		if herr := l.Trigger(hub.Error, &LoadError{Source: src, Err: err}); herr != nil {
			l.logger.Error("error handler failed", log.Error(herr))
		}
	} else {
		l.logger.Debug("asset loaded",
			log.String("name", src.Name),
			log.Int("loaded", progress.Loaded),
			log.Int("to_load", progress.ToLoad))
	}
	if herr := l.Trigger(hub.Progress, progress); herr != nil {
		l.logger.Error("progress handler failed", log.Error(herr))
	}
	if progress.Loaded+progress.Failed == progress.ToLoad {
		l.finish()
	}
}

func (l *Loader) finish() {
	l.mu.Lock()
	if l.ready {
		l.mu.Unlock()
		return
	}
	l.ready = true
	loaded, failed := len(l.items), len(l.failed)
	l.mu.Unlock()

	l.logger.Info("assets ready", log.Int("loaded", loaded), log.Int("failed", failed))
	if err := l.Trigger(hub.Ready, l); err != nil {
		l.logger.Error("ready handler failed", log.Error(err))
	}
}

func (l *Loader) load(ctx context.Context, src Source) (*Asset, error) {
	asset := &Asset{Name: src.Name, Type: src.Type}
	digest := xxhash.New()

	switch src.Type {
	case TypeTexture:
		data, err := l.fetch(ctx, src.Path[0])
		if err != nil {
			return nil, err
		}
		_, _ = digest.Write(data)
		tex, err := decodeTexture(src.Path[0], data)
		if err != nil {
			return nil, err
		}
		asset.Value = tex
	case TypeCubeTexture:
		cube := &CubeTexture{}
		for i, p := range src.Path {
			data, err := l.fetch(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
			_, _ = digest.Write(data)
			if cube.Faces[i], err = decodeTexture(p, data); err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
		}
		asset.Value = cube
	case TypeModel:
		data, err := l.fetch(ctx, src.Path[0])
		if err != nil {
			return nil, err
		}
		_, _ = digest.Write(data)
		model, err := decodeModel(src.Path[0], data)
		if err != nil {
			return nil, err
		}
		asset.Value = model
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, src.Type)
	}

	asset.Checksum = digest.Sum64()
	return asset, nil
}

// fetch reads each distinct path once per Start, collapsing concurrent reads.
func (l *Loader) fetch(ctx context.Context, path string) ([]byte, error) {
	l.cacheMu.Lock()
	data, ok := l.cache[path]
	l.cacheMu.Unlock()
	if ok {
		return data, nil
	}

	v, err, _ := l.flight.Do(path, func() (any, error) {
		data, err := l.fetcher.Fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		l.cacheMu.Lock()
		l.cache[path] = data
		l.cacheMu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
