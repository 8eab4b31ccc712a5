package assets

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var ErrInvalidModel = errors.New("invalid glTF data")

const (
	glbMagic     = 0x46546C67 // "glTF"
	glbChunkJSON = 0x4E4F534A
	glbChunkBIN  = 0x004E4942
	glbHeader    = 12
)

func decodeTexture(path string, data []byte) (*Texture, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &Texture{Path: path, Format: format, Image: img}, nil
}

type gltfDocument struct {
	Asset struct {
		Version   string `json:"version"`
		Generator string `json:"generator"`
	} `json:"asset"`
	Nodes      []struct{ Name string } `json:"nodes"`
	Meshes     []struct{ Name string } `json:"meshes"`
	Materials  []struct{ Name string } `json:"materials"`
	Accessors  []struct {
		Max []float64 `json:"max"`
	} `json:"accessors"`
	Animations []struct {
		Name     string            `json:"name"`
		Channels []json.RawMessage `json:"channels"`
		Samplers []struct {
			Input int `json:"input"`
		} `json:"samplers"`
	} `json:"animations"`
}

// decodeModel accepts a binary glTF container or a plain JSON glTF document.
func decodeModel(path string, data []byte) (*Model, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return buildModel(path, trimmed, nil)
	}
	if len(data) < glbHeader {
		return nil, fmt.Errorf("%s: %w: short header", path, ErrInvalidModel)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != glbMagic {
		return nil, fmt.Errorf("%s: %w: bad magic", path, ErrInvalidModel)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != 2 {
		return nil, fmt.Errorf("%s: %w: unsupported version %d", path, ErrInvalidModel, v)
	}
	total := int(binary.LittleEndian.Uint32(data[8:12]))
	if total > len(data) {
		return nil, fmt.Errorf("%s: %w: truncated", path, ErrInvalidModel)
	}

	var doc, bin []byte
	for off := glbHeader; off+8 <= total; {
		size := int(binary.LittleEndian.Uint32(data[off : off+4]))
		kind := binary.LittleEndian.Uint32(data[off+4 : off+8])
		start := off + 8
		if size < 0 || start+size > total {
			return nil, fmt.Errorf("%s: %w: chunk overruns file", path, ErrInvalidModel)
		}
		switch kind {
		case glbChunkJSON:
			doc = data[start : start+size]
		case glbChunkBIN:
			bin = data[start : start+size]
		}
		off = start + size
	}
	if doc == nil {
		return nil, fmt.Errorf("%s: %w: missing JSON chunk", path, ErrInvalidModel)
	}
	return buildModel(path, doc, bin)
}

func buildModel(path string, doc, bin []byte) (*Model, error) {
	var d gltfDocument
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrInvalidModel, err)
	}
	m := &Model{
		Path:      path,
		Generator: d.Asset.Generator,
		Version:   d.Asset.Version,
		Binary:    bin,
	}
	for _, n := range d.Nodes {
		m.Nodes = append(m.Nodes, n.Name)
	}
	for _, n := range d.Meshes {
		m.Meshes = append(m.Meshes, n.Name)
	}
	for _, n := range d.Materials {
		m.Materials = append(m.Materials, n.Name)
	}
	for _, a := range d.Animations {
		anim := Animation{Name: a.Name, Channels: len(a.Channels)}
		// the duration of a clip is the largest keyframe time of its samplers
		for _, s := range a.Samplers {
			if s.Input < 0 || s.Input >= len(d.Accessors) || len(d.Accessors[s.Input].Max) == 0 {
				continue
			}
			if end := d.Accessors[s.Input].Max[0]; end > anim.Duration {
				anim.Duration = end
			}
		}
		m.Animations = append(m.Animations, anim)
	}
	return m, nil
}
