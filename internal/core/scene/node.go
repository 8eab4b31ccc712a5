// Package scene provides the scene graph the camera, renderer and world share.
//
// Entities that own GPU-side resources implement Disposable; the scene walks
// the graph and calls Dispose without inspecting concrete types.
package scene

import (
	"slices"

	"github.com/google/uuid"
)

type Vec3 struct {
	X, Y, Z float32
}

func (v *Vec3) Set(x, y, z float32) {
	v.X, v.Y, v.Z = x, y, z
}

// Node is anything that can live in the graph. Implementations embed Object.
type Node interface {
	ID() uuid.UUID
	Name() string
	Children() []Node
	Add(children ...Node)
	Remove(child Node) bool
	object() *Object
}

// Disposable releases GPU-side resources. Dispose must be safe to call twice.
type Disposable interface {
	Dispose()
}

// EnvMapReceiver is implemented by entities whose material reacts to the
// scene environment map.
type EnvMapReceiver interface {
	SetEnvMap(env *CubeTexture, intensity float32)
}

// Object is the transform and hierarchy shared by every node.
type Object struct {
	id       uuid.UUID
	name     string
	parent   *Object
	children []Node

	Position      Vec3
	Rotation      Vec3
	Scale         Vec3
	Visible       bool
	CastShadow    bool
	ReceiveShadow bool
}

// MakeObject returns a visible object with unit scale and a fresh ID.
func MakeObject(name string) Object {
	return Object{
		id:      uuid.New(),
		name:    name,
		Scale:   Vec3{1, 1, 1},
		Visible: true,
	}
}

func (o *Object) ID() uuid.UUID    { return o.id }
func (o *Object) Name() string     { return o.name }
func (o *Object) Children() []Node { return slices.Clone(o.children) }
func (o *Object) object() *Object  { return o }

// Add attaches children, detaching each from its previous parent first.
func (o *Object) Add(children ...Node) {
	for _, c := range children {
		co := c.object()
		if co == o {
			continue
		}
		if co.parent != nil {
			co.parent.Remove(c)
		}
		co.parent = o
		o.children = append(o.children, c)
	}
}

func (o *Object) Remove(child Node) bool {
	i := slices.IndexFunc(o.children, func(n Node) bool { return n.ID() == child.ID() })
	if i < 0 {
		return false
	}
	o.children = slices.Delete(o.children, i, i+1)
	child.object().parent = nil
	return true
}

// HasParent reports whether the node is attached somewhere.
func (o *Object) HasParent() bool { return o.parent != nil }

// Traverse visits n and its descendants depth first, parents before children.
func Traverse(n Node, fn func(Node)) {
	fn(n)
	for _, c := range n.object().children {
		Traverse(c, fn)
	}
}

// Group is a node with no content of its own.
type Group struct {
	Object
}

func NewGroup(name string) *Group {
	return &Group{Object: MakeObject(name)}
}
