package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstanceDefaults(t *testing.T) {
	c := NewInstance(node.Nil)
	assert.Equal(t, ProjectionPerspective, c.Projection())
	assert.InDelta(t, 45*math32.Pi/180, c.Fov(), 1e-6)
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(100), c.Far())
	assert.Equal(t, common.IdentityMatrix(), c.WorldToCamera())

	var expected [16]float32
	common.Perspective(expected[:], c.Fov(), 1, 0.1, 100)
	assert.Equal(t, expected, c.CameraToProjection())
}

func TestSetWorldTransformInvertsAndUpdatesAspect(t *testing.T) {
	g := node.NewGraph()
	n, err := g.AddChild(g.Root())
	require.NoError(t, err)
	require.NoError(t, g.Translate(n, 0, 0, 100))
	require.NoError(t, g.RotateY(n, 30))

	c := NewInstance(n, WithFov(math32.Pi/2), WithNear(0.1), WithFar(5000))
	cameraToWorld, err := g.WorldTransform(n)
	require.NoError(t, err)
	c.SetWorldTransform(cameraToWorld, 16.0/9.0)

	assert.Equal(t, cameraToWorld, c.CameraToWorld())
	assert.True(t, common.ApproxEqual(common.IdentityMatrix(), common.Multiply(c.WorldToCamera(), cameraToWorld), 1e-4))
	assert.InDelta(t, 16.0/9.0, c.Aspect(), 1e-6)

	var expected [16]float32
	common.Perspective(expected[:], math32.Pi/2, 16.0/9.0, 0.1, 5000)
	assert.Equal(t, expected, c.CameraToProjection())
}

func TestSetWorldTransformIgnoresNonPositiveAspect(t *testing.T) {
	c := NewInstance(node.Nil, WithAspect(2))
	c.SetWorldTransform(common.IdentityMatrix(), 0)
	assert.Equal(t, float32(2), c.Aspect())
}

func TestResolveModelTransforms(t *testing.T) {
	c := NewInstance(node.Nil)
	c.SetWorldTransform(common.Translation(0, 0, 10), 1)

	modelToWorld := common.Translation(1, 2, 3)
	modelToProjection, modelToCamera := c.ResolveModelTransforms(modelToWorld)

	assert.Equal(t, common.Translation(1, 2, -7), modelToCamera)
	assert.Equal(t, common.Multiply(c.CameraToProjection(), modelToCamera), modelToProjection)
}

func TestOrthographicProjection(t *testing.T) {
	c := NewInstance(node.Nil, WithOrthographic(5), WithNear(1), WithFar(11))
	assert.Equal(t, ProjectionOrthographic, c.Projection())
	assert.Equal(t, "orthographic", c.Projection().String())

	c.SetWorldTransform(common.IdentityMatrix(), 2)
	var expected [16]float32
	common.Orthographic(expected[:], -10, 10, -5, 5, 1, 11)
	assert.Equal(t, expected, c.CameraToProjection())

	c.SetPerspective(1, 0.5, 50)
	assert.Equal(t, ProjectionPerspective, c.Projection())
	assert.Equal(t, float32(50), c.Far())
}
