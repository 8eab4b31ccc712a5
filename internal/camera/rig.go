package camera

import (
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/scene"
	"github.com/zeusync/experience/internal/core/viewport"
)

const (
	DefaultFov  = 35
	DefaultNear = 0.1
	DefaultFar  = 100
)

// Rig is the camera and its controls as seen by the experience.
type Rig struct {
	Instance *Perspective
	Controls *OrbitControls

	sizes  *viewport.Sizes
	logger log.Log
}

// NewRig creates the camera, places it at (6, 4, 8) and adds it to sc.
func NewRig(sizes *viewport.Sizes, sc *scene.Scene, input Input, logger log.Log) *Rig {
	cam := NewPerspective(DefaultFov, float32(sizes.Aspect()), DefaultNear, DefaultFar)
	cam.Position.Set(6, 4, 8)
	cam.LookAt(scene.Vec3{})
	sc.Add(cam)

	controls := NewOrbitControls(cam, input)
	controls.EnableDamping = true

	return &Rig{
		Instance: cam,
		Controls: controls,
		sizes:    sizes,
		logger:   logger.Named("camera"),
	}
}

func (r *Rig) Resize() {
	r.Instance.Aspect = float32(r.sizes.Aspect())
	r.Instance.UpdateProjectionMatrix()
	r.logger.Debug("projection updated", log.Float32("aspect", r.Instance.Aspect))
}

func (r *Rig) Update() {
	r.Controls.Update()
}

// Dispose releases the input bindings held by the controls.
func (r *Rig) Dispose() {
	r.Controls.Dispose()
}
