package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/zeusync/experience/internal/core/scene"
)

// Drag is one pointer movement in normalized surface units.
type Drag struct {
	DX, DY float32
	Zoom   float32 // wheel steps, positive moves away
}

// Input delivers pointer gestures. Bind returns a func that removes the binding.
type Input interface {
	Bind(fn func(Drag)) (unbind func())
}

// OrbitControls rotate the camera around Target on a sphere, easing toward
// the requested angles when damping is enabled.
type OrbitControls struct {
	camera *Perspective
	Target scene.Vec3

	EnableDamping bool
	DampingFactor float32
	RotateSpeed   float32
	MinDistance   float32
	MaxDistance   float32

	mu       sync.Mutex
	radius   float32
	theta    float32 // azimuth around Y
	phi      float32 // polar angle from +Y
	dTheta   float32
	dPhi     float32
	dRadius  float32
	unbind   func()
	disposed bool
}

func NewOrbitControls(cam *Perspective, input Input) *OrbitControls {
	c := &OrbitControls{
		camera:        cam,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		MinDistance:   0,
		MaxDistance:   math32.Inf(1),
	}
	c.sync()
	if input != nil {
		c.unbind = input.Bind(c.handle)
	}
	return c
}

// sync reads the spherical coordinates back from the camera position.
func (c *OrbitControls) sync() {
	dx := c.camera.Position.X - c.Target.X
	dy := c.camera.Position.Y - c.Target.Y
	dz := c.camera.Position.Z - c.Target.Z
	c.radius = math32.Sqrt(dx*dx + dy*dy + dz*dz)
	c.theta = math32.Atan2(dx, dz)
	if c.radius > 0 {
		c.phi = math32.Acos(clamp(dy/c.radius, -1, 1))
	}
}

func (c *OrbitControls) handle(d Drag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.dTheta -= 2 * math32.Pi * d.DX * c.RotateSpeed
	c.dPhi -= 2 * math32.Pi * d.DY * c.RotateSpeed
	c.dRadius += d.Zoom
}

// Update applies pending rotation to the camera. It reports whether the
// camera moved.
func (c *OrbitControls) Update() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dTheta == 0 && c.dPhi == 0 && c.dRadius == 0 {
		return false
	}

	step := float32(1)
	if c.EnableDamping {
		step = c.DampingFactor
	}
	c.theta += c.dTheta * step
	c.phi = clamp(c.phi+c.dPhi*step, 1e-6, math32.Pi-1e-6)
	c.radius = clamp(c.radius*math32.Pow(0.95, -c.dRadius*step), c.MinDistance, c.MaxDistance)

	if c.EnableDamping {
		c.dTheta *= 1 - c.DampingFactor
		c.dPhi *= 1 - c.DampingFactor
		c.dRadius *= 1 - c.DampingFactor
		if math32.Abs(c.dTheta) < 1e-6 && math32.Abs(c.dPhi) < 1e-6 && math32.Abs(c.dRadius) < 1e-6 {
			c.dTheta, c.dPhi, c.dRadius = 0, 0, 0
		}
	} else {
		c.dTheta, c.dPhi, c.dRadius = 0, 0, 0
	}

	sinPhi := math32.Sin(c.phi)
	c.camera.Position.Set(
		c.Target.X+c.radius*sinPhi*math32.Sin(c.theta),
		c.Target.Y+c.radius*math32.Cos(c.phi),
		c.Target.Z+c.radius*sinPhi*math32.Cos(c.theta),
	)
	c.camera.LookAt(c.Target)
	return true
}

// Dispose removes the input binding. Later gestures are ignored.
func (c *OrbitControls) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	if c.unbind != nil {
		c.unbind()
		c.unbind = nil
	}
}

func (c *OrbitControls) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
