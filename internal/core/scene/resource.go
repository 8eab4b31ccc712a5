package scene

import (
	"image"
	"sync"
	"sync/atomic"
)

// Resource is the GPU-side half of a geometry, texture or material. Its
// release hook runs at most once.
type Resource struct {
	once     sync.Once
	disposed atomic.Bool
	hooks    []func()
}

// OnDispose registers fn to run when the resource is released.
func (r *Resource) OnDispose(fn func()) {
	r.hooks = append(r.hooks, fn)
}

func (r *Resource) Dispose() {
	r.once.Do(func() {
		r.disposed.Store(true)
		for _, fn := range r.hooks {
			fn()
		}
	})
}

func (r *Resource) Disposed() bool { return r.disposed.Load() }

type Geometry struct {
	Resource
	Kind     string
	Size     [3]float32
	Vertices int
}

func NewPlaneGeometry(width, height float32) *Geometry {
	return &Geometry{Kind: "plane", Size: [3]float32{width, height, 0}, Vertices: 4}
}

// NewCircleGeometry builds a fan with segments triangles around a center vertex.
func NewCircleGeometry(radius float32, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	return &Geometry{Kind: "circle", Size: [3]float32{radius * 2, radius * 2, 0}, Vertices: segments + 2}
}

func NewBoxGeometry(width, height, depth float32) *Geometry {
	return &Geometry{Kind: "box", Size: [3]float32{width, height, depth}, Vertices: 24}
}

type ColorSpace uint8

const (
	ColorSpaceLinear ColorSpace = iota
	ColorSpaceSRGB
)

type Wrapping uint8

const (
	ClampToEdge Wrapping = iota
	RepeatWrapping
)

type Texture struct {
	Resource
	Name       string
	Image      image.Image
	ColorSpace ColorSpace
	Repeat     [2]float32
	WrapS      Wrapping
	WrapT      Wrapping
}

func NewTexture(name string, img image.Image) *Texture {
	return &Texture{Name: name, Image: img, Repeat: [2]float32{1, 1}}
}

type CubeTexture struct {
	Resource
	Name       string
	Faces      [6]image.Image
	ColorSpace ColorSpace
}
