package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingReleaser struct {
	released int
}

func (c *countingReleaser) Release() { c.released++ }

func TestReleaseAllFreesEveryBuffer(t *testing.T) {
	vb, ib := &countingReleaser{}, &countingReleaser{}

	releaseAll(vb)
	assert.Equal(t, 1, vb.released)
	assert.Equal(t, 0, ib.released)

	releaseAll(vb, ib)
	assert.Equal(t, 2, vb.released)
	assert.Equal(t, 1, ib.released)
}
