// Package camera owns the perspective camera and the orbit controls that move it.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/zeusync/experience/internal/core/scene"
)

// Mat4 is a column-major 4x4 matrix.
type Mat4 [16]float32

type Perspective struct {
	scene.Object

	Fov    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	Projection Mat4
}

func NewPerspective(fov, aspect, near, far float32) *Perspective {
	p := &Perspective{
		Object: scene.MakeObject("camera"),
		Fov:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	p.UpdateProjectionMatrix()
	return p
}

// UpdateProjectionMatrix recomputes Projection from Fov, Aspect, Near and Far.
func (p *Perspective) UpdateProjectionMatrix() {
	top := p.Near * math32.Tan(p.Fov*math32.Pi/360)
	height := 2 * top
	width := p.Aspect * height
	left := -width / 2

	right := left + width
	bottom := top - height
	p.Projection = Mat4{
		2 * p.Near / (right - left), 0, 0, 0,
		0, 2 * p.Near / (top - bottom), 0, 0,
		(right + left) / (right - left), (top + bottom) / (top - bottom), -(p.Far + p.Near) / (p.Far - p.Near), -1,
		0, 0, -2 * p.Far * p.Near / (p.Far - p.Near), 0,
	}
}

// LookAt points the camera at target by setting its Euler rotation (pitch, yaw).
func (p *Perspective) LookAt(target scene.Vec3) {
	dx := target.X - p.Position.X
	dy := target.Y - p.Position.Y
	dz := target.Z - p.Position.Z
	horizontal := math32.Sqrt(dx*dx + dz*dz)
	p.Rotation.Set(math32.Atan2(dy, horizontal), math32.Atan2(-dx, -dz), 0)
}
