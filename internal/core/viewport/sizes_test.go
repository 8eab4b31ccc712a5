package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/experience/internal/core/events/hub"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/surface"
)

func TestPixelRatioIsCapped(t *testing.T) {
	s := surface.NewHeadless("canvas", 800, 600, 3)
	z := New(s, 0, log.NewNop())
	assert.Equal(t, DefaultMaxPixelRatio, z.PixelRatio())
	assert.Equal(t, 800, z.Width())
	assert.Equal(t, 600, z.Height())

	z2 := New(surface.NewHeadless("c2", 10, 10, 3), 1.5, log.NewNop())
	assert.Equal(t, 1.5, z2.PixelRatio())

	z3 := New(surface.NewHeadless("c3", 10, 10, 0), 2, log.NewNop())
	assert.Equal(t, 1.0, z3.PixelRatio())
}

func TestResizeSignalUpdatesBeforeTrigger(t *testing.T) {
	s := surface.NewHeadless("canvas", 800, 600, 1)
	z := New(s, 2, log.NewNop())

	var seen []Size
	_, err := z.On(hub.Resize, func(e hub.Event) error {
		// consumers read the latest values synchronously
		assert.Equal(t, e.Data.(Size), z.Size())
		seen = append(seen, z.Size())
		return nil
	})
	require.NoError(t, err)

	s.Resize(1920, 1080, 2.5)
	s.Resize(400, 800, 1)

	require.Len(t, seen, 2)
	assert.Equal(t, Size{Width: 1920, Height: 1080, PixelRatio: 2}, seen[0])
	assert.Equal(t, Size{Width: 400, Height: 800, PixelRatio: 1}, seen[1])
	assert.InDelta(t, 0.5, z.Aspect(), 1e-9)
}

func TestCloseDetachesFromSurface(t *testing.T) {
	s := surface.NewHeadless("canvas", 800, 600, 1)
	z := New(s, 2, log.NewNop())
	calls := 0
	_, _ = z.On(hub.Resize, func(hub.Event) error { calls++; return nil })

	z.Close()
	z.Close()
	assert.Equal(t, 0, s.Listeners())
	s.Resize(1, 1, 1)
	assert.Equal(t, 0, calls)
}

func TestAspectDegenerateHeight(t *testing.T) {
	assert.Equal(t, 1.0, Size{Width: 10}.Aspect())
}
