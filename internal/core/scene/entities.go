package scene

type Mesh struct {
	Object
	Geometry *Geometry
	Material Material
}

func NewMesh(name string, g *Geometry, m Material) *Mesh {
	return &Mesh{Object: MakeObject(name), Geometry: g, Material: m}
}

func (m *Mesh) Dispose() {
	if m.Geometry != nil {
		m.Geometry.Dispose()
	}
	if m.Material != nil {
		m.Material.Dispose()
	}
}

func (m *Mesh) SetEnvMap(env *CubeTexture, intensity float32) {
	if r, ok := m.Material.(EnvMapReceiver); ok {
		r.SetEnvMap(env, intensity)
	}
}

type Shadow struct {
	Resource
	MapSize    [2]int
	Far        float32
	NormalBias float32
}

type DirectionalLight struct {
	Object
	Color     uint32
	Intensity float32
	Shadow    Shadow
}

func NewDirectionalLight(color uint32, intensity float32) *DirectionalLight {
	return &DirectionalLight{
		Object:    MakeObject("directionalLight"),
		Color:     color,
		Intensity: intensity,
		Shadow:    Shadow{MapSize: [2]int{512, 512}, Far: 500},
	}
}

// Dispose releases the shadow map.
func (l *DirectionalLight) Dispose() {
	l.Shadow.Dispose()
}
