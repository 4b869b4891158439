package danton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	earth := NewEarth(false)
	sampler := DefaultSampler()
	rng := NewPRNGFromSeed(1)
	ctx := NewContext(earth, sampler, rng, DefaultMaterials())
	require.NoError(t, ctx.Validate())
	return ctx
}

func TestContextValidateRequiresEngines(t *testing.T) {
	ctx := &Context{Earth: NewEarth(false), Sampler: DefaultSampler(), RNG: NewPRNGFromSeed(1)}
	assert.Error(t, ctx.Validate())
}

func TestContextValidateRejectsFluxNeutrinoWithBackwardMode(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Mode = ModeBackward
	ctx.FluxNeutrino = true
	ctx.DetectorRadius = EarthRadius
	assert.Error(t, ctx.Validate())
}

func TestContextValidateRejectsFluxNeutrinoWithoutDetectorRadius(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FluxNeutrino = true
	ctx.DetectorRadius = 0
	assert.Error(t, ctx.Validate())
}

func TestContextCheckSamplerFreshDetectsMutation(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Sampler.SpeciesWeight[SpeciesNuE] = 99
	assert.Error(t, ctx.checkSamplerFresh())
}
