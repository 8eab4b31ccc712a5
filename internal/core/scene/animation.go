package scene

import (
	"errors"
	"time"
)

var ErrUnknownClip = errors.New("unknown animation clip")

type Clip struct {
	Name     string
	Duration time.Duration
}

// Action is the playback state of one clip.
type Action struct {
	Clip    Clip
	Time    time.Duration
	Weight  float32
	Playing bool

	fade    time.Duration
	fadeAge time.Duration
	fadeIn  bool
}

// Mixer plays clips of one model and cross-fades between them.
type Mixer struct {
	actions map[string]*Action
	current *Action
}

func NewMixer(clips ...Clip) *Mixer {
	m := &Mixer{actions: make(map[string]*Action, len(clips))}
	for _, c := range clips {
		m.actions[c.Name] = &Action{Clip: c}
	}
	return m
}

func (m *Mixer) Action(name string) (*Action, bool) {
	a, ok := m.actions[name]
	return a, ok
}

func (m *Mixer) Current() *Action { return m.current }

// Play starts name. With a positive fade the current clip fades out while the
// new one fades in.
func (m *Mixer) Play(name string, fade time.Duration) error {
	next, ok := m.actions[name]
	if !ok {
		return ErrUnknownClip
	}
	if next == m.current {
		return nil
	}
	next.Playing = true
	next.Time = 0
	if m.current == nil || fade <= 0 {
		if m.current != nil {
			m.current.Playing = false
			m.current.Weight = 0
		}
		next.Weight = 1
		next.fade = 0
	} else {
		m.current.fade, m.current.fadeAge, m.current.fadeIn = fade, 0, false
		next.Weight = 0
		next.fade, next.fadeAge, next.fadeIn = fade, 0, true
	}
	m.current = next
	return nil
}

// Update advances every playing action by delta.
func (m *Mixer) Update(delta time.Duration) {
	for _, a := range m.actions {
		if !a.Playing {
			continue
		}
		a.Time += delta
		if a.Clip.Duration > 0 {
			a.Time %= a.Clip.Duration
		}
		if a.fade > 0 {
			a.fadeAge += delta
			w := float32(a.fadeAge) / float32(a.fade)
			if w >= 1 {
				w = 1
				a.fade = 0
			}
			if a.fadeIn {
				a.Weight = w
			} else {
				a.Weight = 1 - w
				if w == 1 {
					a.Playing = false
				}
			}
		}
	}
}
