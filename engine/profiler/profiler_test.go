package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/internal/gltest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second))

	for range 29 {
		clock.advance(10 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	clock.advance(710 * time.Millisecond)
	require.True(t, p.Tick())

	assert.InDelta(t, 30.0, p.Last().FPS, 1e-9)
	clock.advance(time.Millisecond)
	assert.False(t, p.Tick(), "the frame counter restarts after a report")
}

func TestTickReportsStateTransitionsPerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	st := state.New(gltest.New())
	b := state.DefaultBlend()
	st.SetBlend(&b)

	p := NewProfiler(WithClock(clock.now), WithState(st))
	st.SetBlend(&b)
	st.SetViewport(common.NewRect(0, 0, 4, 4))
	st.SetViewport(common.NewRect(0, 0, 4, 4))
	clock.advance(time.Second)
	require.True(t, p.Tick())

	r := p.Last()
	assert.Equal(t, 1, r.Applied, "transitions before the profiler existed are not counted")
	assert.Equal(t, 2, r.Skipped)
	assert.InDelta(t, 2.0/3.0, r.SkipRatio(), 1e-9)
}

func TestSkipRatioWithoutTransitions(t *testing.T) {
	assert.Zero(t, Report{}.SkipRatio())
}
