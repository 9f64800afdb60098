package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickAccumulatesUntilInterval(t *testing.T) {
	p := NewProfiler(WithInterval(time.Hour), WithQuiet(true))
	for range 3 {
		assert.False(t, p.Tick(Frame{Rigid: 2, Skeletal: 1, Lights: 4}))
	}
	assert.Zero(t, p.Last().Frames)

	p.updateInterval = 0
	require.True(t, p.Tick(Frame{Rigid: 2, Skeletal: 1, Lights: 3}))

	r := p.Last()
	assert.Equal(t, 4, r.Frames)
	assert.Equal(t, 8, r.Rigid)
	assert.Equal(t, 4, r.Skeletal)
	assert.Equal(t, 3, r.Lights)
	assert.Positive(t, r.FPS)
	assert.Positive(t, r.SysMB)
}

func TestTickResetsAfterReport(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithQuiet(true))
	require.True(t, p.Tick(Frame{Rigid: 5}))
	require.True(t, p.Tick(Frame{Skeletal: 1}))

	r := p.Last()
	assert.Equal(t, 1, r.Frames)
	assert.Zero(t, r.Rigid)
	assert.Equal(t, 1, r.Skeletal)
}
