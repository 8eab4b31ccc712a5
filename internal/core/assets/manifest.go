package assets

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Type selects how a manifest entry is fetched and decoded.
type Type string

const (
	TypeTexture     Type = "texture"
	TypeCubeTexture Type = "cubeTexture"
	TypeModel       Type = "model"
)

// CubeFaces is the number of images a cube texture needs (px, nx, py, ny, pz, nz).
const CubeFaces = 6

var (
	ErrEmptyName     = errors.New("manifest entry has no name")
	ErrDuplicateName = errors.New("duplicate manifest name")
	ErrUnknownType   = errors.New("unknown asset type")
	ErrPathCount     = errors.New("wrong number of paths")
)

// Paths accepts either a single YAML scalar or a sequence.
type Paths []string

func (p *Paths) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*p = Paths{value.Value}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*p = list
	return nil
}

// Source is one manifest entry.
type Source struct {
	Name string `yaml:"name" json:"name"`
	Type Type   `yaml:"type" json:"type"`
	Path Paths  `yaml:"path" json:"path"`
}

type manifestFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadManifest decodes and validates a YAML manifest.
func LoadManifest(r io.Reader) ([]Source, error) {
	var m manifestFile
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := Validate(m.Sources); err != nil {
		return nil, err
	}
	return m.Sources, nil
}

// Validate checks names are unique and each entry has the paths its type needs.
func Validate(sources []Source) error {
	seen := make(map[string]struct{}, len(sources))
	for i, s := range sources {
		if s.Name == "" {
			return fmt.Errorf("entry %d: %w", i, ErrEmptyName)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%q: %w", s.Name, ErrDuplicateName)
		}
		seen[s.Name] = struct{}{}

		switch s.Type {
		case TypeTexture, TypeModel:
			if len(s.Path) != 1 {
				return fmt.Errorf("%q: %w: want 1, got %d", s.Name, ErrPathCount, len(s.Path))
			}
		case TypeCubeTexture:
			if len(s.Path) != CubeFaces {
				return fmt.Errorf("%q: %w: want %d, got %d", s.Name, ErrPathCount, CubeFaces, len(s.Path))
			}
		default:
			return fmt.Errorf("%q: %w %q", s.Name, ErrUnknownType, s.Type)
		}
	}
	return nil
}
