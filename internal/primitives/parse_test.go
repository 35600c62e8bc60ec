package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKindKnownAndUnknown(t *testing.T) {
	k, err := ParseKind("Sphere")
	require.NoError(t, err)
	assert.Equal(t, Sphere, k)

	_, err = ParseKind("NotAType")
	assert.Error(t, err)
}

func TestParseParamsLayoutPerKind(t *testing.T) {
	p, err := ParseParams(Cylinder, []string{"1", "2", "3", "0", "0", "1", "0.5", "2"})
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1, 2, 3}, p.Coords)
	assert.Equal(t, [3]float64{0, 0, 1}, p.Dir)
	assert.Equal(t, 0.5, p.Radius)
	assert.Equal(t, 2.0, p.Height)
}

func TestParseParamsWrongCount(t *testing.T) {
	_, err := ParseParams(Sphere, []string{"0", "0"})
	assert.Error(t, err)
}
