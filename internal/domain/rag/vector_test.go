package rag

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeL2InPlace(t *testing.T) {
	v := []float32{3, 4}
	require.True(t, NormalizeL2InPlace(v))
	require.InDelta(t, 0.6, float64(v[0]), 1e-6)
	require.InDelta(t, 0.8, float64(v[1]), 1e-6)

	var norm2 float64
	for _, x := range v {
		norm2 += float64(x) * float64(x)
	}
	require.InDelta(t, 1.0, math.Sqrt(norm2), 1e-6)
}

func TestNormalizeL2InPlace_ZeroNorm(t *testing.T) {
	require.False(t, NormalizeL2InPlace([]float32{0, 0, 0}))
	require.False(t, NormalizeL2InPlace(nil))
}

func TestNormalizeL2InPlace_AlreadyUnit(t *testing.T) {
	v := []float32{1, 0}
	require.True(t, NormalizeL2InPlace(v))
	require.InDelta(t, 1.0, float64(v[0]), 1e-6)
	require.InDelta(t, 0.0, float64(v[1]), 1e-6)
}
