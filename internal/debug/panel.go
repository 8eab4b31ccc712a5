// Package debug holds the parameter tweak panel that exists only in debug mode.
package debug

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/runloop"
)

var (
	ErrInactive     = errors.New("debug panel inactive")
	ErrUnknownParam = errors.New("unknown debug parameter")
	ErrDestroyed    = errors.New("debug panel destroyed")
)

// Param is the wire form of one binding.
type Param struct {
	Folder string  `json:"folder"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Step   float64 `json:"step"`
}

// Binding ties a panel control to a float32 field.
type Binding struct {
	folder   string
	name     string
	min      float64
	max      float64
	step     float64
	target   *float32
	onChange []func(float64)
	onFinish []func(float64)
}

func (b *Binding) OnChange(fn func(float64)) *Binding {
	b.onChange = append(b.onChange, fn)
	return b
}

func (b *Binding) OnFinishChange(fn func(float64)) *Binding {
	b.onFinish = append(b.onFinish, fn)
	return b
}

func (b *Binding) param() Param {
	return Param{Folder: b.folder, Name: b.name, Value: float64(*b.target), Min: b.min, Max: b.max, Step: b.step}
}

type Folder struct {
	name  string
	panel *Panel
}

// AddFloat binds target under name, constrained to [min, max] in step increments.
func (f *Folder) AddFloat(name string, target *float32, min, max, step float64) *Binding {
	b := &Binding{folder: f.name, name: name, min: min, max: max, step: step, target: target}
	f.panel.mu.Lock()
	f.panel.bindings[key(f.name, name)] = b
	f.panel.order = append(f.panel.order, b)
	f.panel.mu.Unlock()
	return b
}

// Panel is inert unless constructed active; callers check Active before
// building folders.
type Panel struct {
	active bool
	sched  runloop.Scheduler
	logger log.Log

	mu        sync.Mutex
	folders   map[string]*Folder
	bindings  map[string]*Binding
	order     []*Binding
	server    *server
	destroyed bool
}

func New(active bool, sched runloop.Scheduler, logger log.Log) *Panel {
	return &Panel{
		active:   active,
		sched:    sched,
		logger:   logger.Named("debug"),
		folders:  make(map[string]*Folder),
		bindings: make(map[string]*Binding),
	}
}

func (p *Panel) Active() bool { return p.active }

// AddFolder returns the folder called name, creating it on first use.
func (p *Panel) AddFolder(name string) *Folder {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := p.folders[name]; ok {
		return f
	}
	f := &Folder{name: name, panel: p}
	p.folders[name] = f
	return f
}

// Set clamps and snaps value, writes it to the bound field and runs the
// change callbacks. Call it on the scheduler thread.
func (p *Panel) Set(folder, name string, value float64) (float64, error) {
	if !p.active {
		return 0, ErrInactive
	}
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return 0, ErrDestroyed
	}
	b, ok := p.bindings[key(folder, name)]
	if !ok {
		p.mu.Unlock()
		return 0, ErrUnknownParam
	}
	v := constrain(value, b.min, b.max, b.step)
	*b.target = float32(v)
	p.mu.Unlock()

	for _, fn := range b.onChange {
		fn(v)
	}
	for _, fn := range b.onFinish {
		fn(v)
	}
	return v, nil
}

// Params returns every binding in registration order. Bound fields belong to
// the scheduler thread; other goroutines go through snapshot.
func (p *Panel) Params() []Param {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Param, 0, len(p.order))
	for _, b := range p.order {
		out = append(out, b.param())
	}
	return out
}

// snapshot reads the bindings on the scheduler thread.
func (p *Panel) snapshot(ctx context.Context) ([]Param, error) {
	out := make(chan []Param, 1)
	p.sched.Post(func() { out <- p.Params() })
	select {
	case params := <-out:
		return params, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Destroy stops the live channel, if any, and drops every binding.
func (p *Panel) Destroy() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true
	srv := p.server
	p.server = nil
	clear(p.bindings)
	p.order = nil
	p.mu.Unlock()

	if srv != nil {
		srv.close()
	}
	p.logger.Info("debug panel destroyed")
}

func (p *Panel) Destroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}

func key(folder, name string) string { return folder + "/" + name }

func constrain(v, lo, hi, step float64) float64 {
	if step > 0 {
		v = lo + math.Round((v-lo)/step)*step
	}
	return math.Max(lo, math.Min(hi, v))
}
