package world

import (
	"fmt"
	"time"

	"github.com/zeusync/experience/internal/core/assets"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/scene"
	"github.com/zeusync/experience/internal/debug"
)

const foxFade = 500 * time.Millisecond

type Fox struct {
	Model *scene.Group
	Mixer *scene.Mixer
	Clips []string

	selected float32
	logger   log.Log
}

func newFox(sc *scene.Scene, res *assets.Loader, panel *debug.Panel, logger log.Log) *Fox {
	model, ok := res.Model(FoxModel)
	if !ok {
		logger.Warn("model missing", log.String("name", FoxModel))
		return nil
	}

	f := &Fox{Model: scene.NewGroup("fox"), logger: logger}
	f.Model.Scale.Set(0.02, 0.02, 0.02)
	for _, name := range model.Meshes {
		mesh := scene.NewMesh(name, &scene.Geometry{Kind: "gltf"}, scene.NewStandardMaterial())
		mesh.CastShadow = true
		f.Model.Add(mesh)
	}
	sc.Add(f.Model)

	clips := make([]scene.Clip, 0, len(model.Animations))
	for _, a := range model.Animations {
		clips = append(clips, scene.Clip{Name: a.Name, Duration: time.Duration(a.Duration * float64(time.Second))})
		f.Clips = append(f.Clips, a.Name)
	}
	f.Mixer = scene.NewMixer(clips...)
	if len(f.Clips) > 0 {
		_ = f.Mixer.Play(f.Clips[0], 0)
	}

	if panel.Active() && len(f.Clips) > 1 {
		panel.AddFolder("Fox").
			AddFloat("animation", &f.selected, 0, float64(len(f.Clips)-1), 1).
			OnFinishChange(func(v float64) {
				if err := f.Play(f.Clips[int(v)]); err != nil {
					logger.Warn("play clip", log.Error(err))
				}
			})
	}
	return f
}

// Play cross-fades to the named clip.
func (f *Fox) Play(name string) error {
	if err := f.Mixer.Play(name, foxFade); err != nil {
		return fmt.Errorf("fox clip %q: %w", name, err)
	}
	return nil
}

func (f *Fox) Update(delta time.Duration) {
	f.Mixer.Update(delta)
}
