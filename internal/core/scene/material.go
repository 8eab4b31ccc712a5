package scene

// Material is a disposable surface description attached to a mesh.
type Material interface {
	Disposable
	Kind() string
}

// StandardMaterial is a physically based material. Disposing it releases
// every texture it references.
type StandardMaterial struct {
	Resource
	Color           uint32
	Roughness       float32
	Metalness       float32
	Map             *Texture
	NormalMap       *Texture
	EnvMap          *CubeTexture
	EnvMapIntensity float32
	NeedsUpdate     bool
}

func NewStandardMaterial() *StandardMaterial {
	return &StandardMaterial{Color: 0xffffff, Roughness: 1, EnvMapIntensity: 1}
}

func (m *StandardMaterial) Kind() string { return "standard" }

func (m *StandardMaterial) SetEnvMap(env *CubeTexture, intensity float32) {
	m.EnvMap = env
	m.EnvMapIntensity = intensity
	m.NeedsUpdate = true
}

func (m *StandardMaterial) Dispose() {
	m.Resource.Dispose()
	for _, t := range []*Texture{m.Map, m.NormalMap} {
		if t != nil {
			t.Dispose()
		}
	}
	if m.EnvMap != nil {
		m.EnvMap.Dispose()
	}
}

// BasicMaterial is an unlit color.
type BasicMaterial struct {
	Resource
	Color uint32
}

func (m *BasicMaterial) Kind() string { return "basic" }
