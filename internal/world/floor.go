package world

import (
	"github.com/chewxy/math32"

	"github.com/zeusync/experience/internal/core/assets"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/scene"
)

type Floor struct {
	Mesh *scene.Mesh
}

func newFloor(sc *scene.Scene, res *assets.Loader, logger log.Log) *Floor {
	material := scene.NewStandardMaterial()
	if color := texture(res, GrassColorTexture, logger); color != nil {
		color.ColorSpace = scene.ColorSpaceSRGB
		color.Repeat = [2]float32{1.5, 1.5}
		color.WrapS, color.WrapT = scene.RepeatWrapping, scene.RepeatWrapping
		material.Map = color
	}
	if normal := texture(res, GrassNormalTexture, logger); normal != nil {
		normal.Repeat = [2]float32{1.5, 1.5}
		normal.WrapS, normal.WrapT = scene.RepeatWrapping, scene.RepeatWrapping
		material.NormalMap = normal
	}

	mesh := scene.NewMesh("floor", scene.NewCircleGeometry(5, 64), material)
	mesh.Rotation.X = -math32.Pi / 2
	mesh.ReceiveShadow = true
	sc.Add(mesh)
	return &Floor{Mesh: mesh}
}
