package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform_Range(t *testing.T) {
	u, err := NewUniform(-0.5, 1.5, 7)
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		v := u.Sample()
		if v < -0.5 || v >= 1.5 {
			t.Fatalf("sample %d out of range: %f", i, v)
		}
	}
}

func TestUniform_SameSeedSameDraws(t *testing.T) {
	a, _ := NewUniform(-1, 1, 42)
	b, _ := NewUniform(-1, 1, 42)
	c, _ := NewUniform(-1, 1, 43)

	differ := false
	for i := 0; i < 100; i++ {
		va, vb, vc := a.Sample(), b.Sample(), c.Sample()
		assert.Equal(t, va, vb)
		if va != vc {
			differ = true
		}
	}
	assert.True(t, differ, "different seeds produced identical draws")
}

func TestUniform_InvalidRange(t *testing.T) {
	_, err := NewUniform(1, -1, 0)
	assert.Error(t, err)
}

func TestNormal_Moments(t *testing.T) {
	n, err := NewNormal(2, 0.5, 3)
	require.NoError(t, err)

	const draws = 50000
	sum, sumSq := 0.0, 0.0
	for i := 0; i < draws; i++ {
		v := n.Sample()
		sum += v
		sumSq += v * v
	}
	mean := sum / draws
	sd := math.Sqrt(sumSq/draws - mean*mean)
	assert.InDelta(t, 2.0, mean, 0.02)
	assert.InDelta(t, 0.5, sd, 0.02)
}

func TestNone(t *testing.T) {
	assert.Equal(t, 0.0, None{}.Sample())
}

func TestLiteralSourcesDrawFromSeedZero(t *testing.T) {
	u := &Uniform{Min: -1, Max: 1}
	seeded, err := NewUniform(-1, 1, 0)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, seeded.Sample(), u.Sample())
	}

	n := &Normal{Mean: 2, StdDev: 0.5}
	seededN, err := NewNormal(2, 0.5, 0)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, seededN.Sample(), n.Sample())
	}
}
