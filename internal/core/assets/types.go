package assets

import "image"

// Asset is a loaded manifest entry. Value holds a *Texture, *CubeTexture or *Model.
type Asset struct {
	Name     string
	Type     Type
	Value    any
	Checksum uint64
}

type Texture struct {
	Path   string
	Format string
	Image  image.Image
}

func (t *Texture) Size() (int, int) {
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

type CubeTexture struct {
	Faces [CubeFaces]*Texture
}

// Model is the scene description of a glTF asset plus its binary buffer.
type Model struct {
	Path       string
	Generator  string
	Version    string
	Nodes      []string
	Meshes     []string
	Materials  []string
	Animations []Animation
	Binary     []byte
}

type Animation struct {
	Name     string
	Channels int
	Duration float64 // seconds
}

// Progress is the payload of hub.Progress.
type Progress struct {
	Name   string
	Loaded int
	Failed int
	ToLoad int
}

// LoadError is the payload of hub.Error.
type LoadError struct {
	Source Source
	Err    error
}

func (e *LoadError) Error() string {
	return "load " + e.Source.Name + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }
