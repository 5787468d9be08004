package common

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBoundingSphere_Empty(t *testing.T) {
	_, err := ComputeBoundingSphere(nil)
	require.ErrorIs(t, err, ErrEmptyMesh)
}

func TestComputeBoundingSphere_AxisAlignedCube(t *testing.T) {
	var positions []mgl32.Vec3
	for _, x := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			for _, z := range []float32{-1, 1} {
				positions = append(positions, mgl32.Vec3{x, y, z})
			}
		}
	}

	s, err := ComputeBoundingSphere(positions)
	require.NoError(t, err)
	assert.InDelta(t, 0, s.Center.Len(), 1e-6)
	assert.InDelta(t, float32(1.7320508), s.Radius, 1e-5)
}

func TestComputeBoundingSphere_SinglePoint(t *testing.T) {
	s, err := ComputeBoundingSphere([]mgl32.Vec3{{3, -2, 5}})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{3, -2, 5}, s.Center)
	assert.Equal(t, float32(0), s.Radius)
}

func TestComputeBoundingSphere_NegativeYOnly(t *testing.T) {
	// All points below the origin: a -Inf seed on the min corner would blow the sphere up.
	positions := []mgl32.Vec3{{0, -5, 0}, {1, -4, 1}, {-1, -6, 0}}

	s, err := ComputeBoundingSphere(positions)
	require.NoError(t, err)
	assert.InDelta(t, float32(-5), s.Center.Y(), 1e-6)
	assert.Less(t, s.Radius, float32(2))
}

func TestComputeBoundingSphere_ContainsAllVertices(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := range 50 {
		n := 1 + rng.Intn(200)
		positions := make([]mgl32.Vec3, n)
		offset := mgl32.Vec3{rng.Float32()*200 - 100, rng.Float32()*200 - 100, rng.Float32()*200 - 100}
		for i := range positions {
			positions[i] = mgl32.Vec3{
				rng.Float32()*10 - 5,
				rng.Float32()*30 - 15,
				rng.Float32()*2 - 1,
			}.Add(offset)
		}

		s, err := ComputeBoundingSphere(positions)
		require.NoError(t, err)
		for i, p := range positions {
			assert.Truef(t, s.Contains(p, 1e-3), "trial %d: vertex %d %v outside sphere %+v", trial, i, p, s)
		}
	}
}

func TestComputeBoundingBox(t *testing.T) {
	min, max := ComputeBoundingBox([]mgl32.Vec3{{1, 2, 3}, {-1, 5, 0}, {4, -2, 1}})
	assert.Equal(t, mgl32.Vec3{-1, -2, 0}, min)
	assert.Equal(t, mgl32.Vec3{4, 5, 3}, max)
}
