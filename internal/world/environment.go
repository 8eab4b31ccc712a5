package world

import (
	"github.com/zeusync/experience/internal/core/assets"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/scene"
	"github.com/zeusync/experience/internal/debug"
)

type Environment struct {
	SunLight  *scene.DirectionalLight
	Map       *scene.CubeTexture
	Intensity float32

	scene  *scene.Scene
	logger log.Log
}

func newEnvironment(sc *scene.Scene, res *assets.Loader, panel *debug.Panel, logger log.Log) *Environment {
	e := &Environment{scene: sc, Intensity: 0.4, logger: logger}

	e.SunLight = scene.NewDirectionalLight(0xffffff, 4)
	e.SunLight.CastShadow = true
	e.SunLight.Shadow.Far = 15
	e.SunLight.Shadow.MapSize = [2]int{1024, 1024}
	e.SunLight.Shadow.NormalBias = 0.05
	e.SunLight.Position.Set(3.5, 2, -1.25)
	sc.Add(e.SunLight)

	if cube, ok := res.CubeTexture(EnvironmentMapTexture); ok {
		e.Map = &scene.CubeTexture{Name: EnvironmentMapTexture, ColorSpace: scene.ColorSpaceSRGB}
		for i, f := range cube.Faces {
			e.Map.Faces[i] = f.Image
		}
		e.UpdateMaterials()
	} else {
		logger.Warn("environment map missing", log.String("name", EnvironmentMapTexture))
	}

	if panel.Active() {
		folder := panel.AddFolder("Environment")
		folder.AddFloat("Sunlight", &e.SunLight.Intensity, 0, 10, 0.1)
		folder.AddFloat("Sunlight X", &e.SunLight.Position.X, -5, 5, 0.1)
		folder.AddFloat("Sunlight Y", &e.SunLight.Position.Y, -5, 5, 0.1)
		folder.AddFloat("Sunlight Z", &e.SunLight.Position.Z, -5, 5, 0.1)
		folder.AddFloat("envMapIntensity", &e.Intensity, 0, 3, 0.1).
			OnFinishChange(func(float64) { e.UpdateMaterials() })
	}
	return e
}

// UpdateMaterials pushes the map and intensity to every receiver in the scene.
func (e *Environment) UpdateMaterials() int {
	if e.Map == nil {
		return 0
	}
	n := e.scene.ApplyEnvironment(e.Map, e.Intensity)
	e.logger.Debug("environment applied", log.Int("receivers", n), log.Float32("intensity", e.Intensity))
	return n
}
