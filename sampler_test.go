package danton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSamplerValidates(t *testing.T) {
	s := DefaultSampler()
	require.NoError(t, s.Validate())
	assert.False(t, s.Stale(s.Hash()))
}

func TestSamplerValidateRejectsNegativeAltitude(t *testing.T) {
	s := DefaultSampler()
	s.Altitude = Range{-1, 0}
	assert.Error(t, s.Validate())
}

func TestSamplerValidateRejectsEnergyBelowFloor(t *testing.T) {
	s := DefaultSampler()
	s.Energy = Range{10, 1e12}
	assert.Error(t, s.Validate())
}

func TestSamplerValidateRejectsEnergyCeilingTooLow(t *testing.T) {
	s := DefaultSampler()
	s.Energy = Range{1e7, 1e6}
	assert.Error(t, s.Validate())
}

func TestSamplerValidateRejectsAllZeroWeights(t *testing.T) {
	s := DefaultSampler()
	for i := range s.SpeciesWeight {
		s.SpeciesWeight[i] = 0
	}
	assert.Error(t, s.Validate())
}

func TestSamplerMutationAfterValidateIsStale(t *testing.T) {
	s := DefaultSampler()
	require.NoError(t, s.Validate())
	last := s.Hash()
	s.SpeciesWeight[SpeciesNuE] = 5
	require.NoError(t, s.Validate())
	assert.True(t, s.Stale(last))
}

func TestLinearGrammageModeIsGridded(t *testing.T) {
	rng := Range{0, 1}
	v := Linear(rng, 5, 10, true, nil)
	assert.InDelta(t, 5.0/9.0, v, 1e-9)
}

func TestLinearRandomModeUsesPRNG(t *testing.T) {
	rng := NewPRNGFromSeed(7)
	r := Range{10, 20}
	v := Linear(r, 0, 0, false, rng)
	assert.GreaterOrEqual(t, v, r.Lo)
	assert.LessOrEqual(t, v, r.Hi)
}

func TestLogOrLinearPositiveRangeIsLogUniform(t *testing.T) {
	rng := NewPRNGFromSeed(99)
	r := Range{1e7, 1e12}
	v, w := LogOrLinear(r, rng)
	assert.GreaterOrEqual(t, v, r.Lo)
	assert.LessOrEqual(t, v, r.Hi)
	assert.Greater(t, w, 0.0)
}

func TestLogOrLinearStraddlingZeroIsLinear(t *testing.T) {
	rng := NewPRNGFromSeed(3)
	r := Range{-1, 1}
	v, w := LogOrLinear(r, rng)
	assert.GreaterOrEqual(t, v, r.Lo)
	assert.LessOrEqual(t, v, r.Hi)
	assert.Equal(t, 1.0, w)
}
