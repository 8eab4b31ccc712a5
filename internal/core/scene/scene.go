package scene

import "sync"

// Scene is the root of the graph.
type Scene struct {
	Object
	Environment *CubeTexture
	Background  uint32

	mu       sync.Mutex
	disposed bool
}

func New() *Scene {
	return &Scene{Object: MakeObject("scene")}
}

// ApplyEnvironment hands the environment map to every receiver in the graph.
func (s *Scene) ApplyEnvironment(env *CubeTexture, intensity float32) int {
	s.Environment = env
	applied := 0
	Traverse(s, func(n Node) {
		if r, ok := n.(EnvMapReceiver); ok {
			r.SetEnvMap(env, intensity)
			applied++
		}
	})
	return applied
}

// Dispose releases the resources of every disposable node and the scene
// environment. It returns the number of nodes visited for release; a second
// call releases nothing and returns 0.
func (s *Scene) Dispose() int {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return 0
	}
	s.disposed = true
	s.mu.Unlock()

	released := 0
	Traverse(s, func(n Node) {
		if n == Node(s) {
			return
		}
		if d, ok := n.(Disposable); ok {
			d.Dispose()
			released++
		}
	})
	if s.Environment != nil {
		s.Environment.Dispose()
	}
	return released
}

func (s *Scene) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Count returns the number of nodes below the root.
func (s *Scene) Count() int {
	n := -1
	Traverse(s, func(Node) { n++ })
	return n
}
