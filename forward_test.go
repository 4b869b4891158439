package danton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRunForwardEmitsAtLeastOneRecordForManyTrials(t *testing.T) {
	ctx := newTestContext(t)
	ctx.EnergyCut = 1e5

	var records []Record
	sink := func(r Record) { records = append(records, r) }

	for i := 0; i < 200; i++ {
		primary := &State{
			Species:   NuTau,
			Position:  r3.Vec{X: EarthRadius + 1e4, Y: 0, Z: 0},
			Direction: r3.Unit(r3.Vec{X: -1, Y: 0.05, Z: 0}),
			Energy:    1e9,
			Weight:    1,
		}
		require.NoError(t, ctx.RunForward(int64(i), primary, sink))
	}
	assert.NotEmpty(t, records, "expected at least one emitted record across 200 trials")
}

func TestRunForwardRejectsNonNeutrinoPrimarySilently(t *testing.T) {
	ctx := newTestContext(t)
	var records []Record
	sink := func(r Record) { records = append(records, r) }

	primary := &State{Species: Hadron, Position: r3.Vec{X: EarthRadius, Y: 0, Z: 0}, Direction: r3.Unit(r3.Vec{X: 1, Y: 0, Z: 0}), Energy: 1e9, Weight: 1}
	require.NoError(t, ctx.RunForward(0, primary, sink))
	assert.Empty(t, records)
}

func TestRunForwardHonorsTausRequestedCap(t *testing.T) {
	ctx := newTestContext(t)
	ctx.TausRequested = 1
	ctx.EnergyCut = 1

	var taus int
	sink := func(r Record) {
		if _, ok := r.(TauPairRecord); ok {
			taus++
		}
	}

	for i := 0; i < 500 && taus < 5; i++ {
		primary := &State{
			Species:   NuTau,
			Position:  r3.Vec{X: EarthRadius + 1e4, Y: 0, Z: 0},
			Direction: r3.Unit(r3.Vec{X: -1, Y: 0.05, Z: 0}),
			Energy:    1e10,
			Weight:    1,
		}
		require.NoError(t, ctx.RunForward(int64(i), primary, sink))
	}
	assert.LessOrEqual(t, taus, 1)
}

func TestRunForwardEmitsNeutrinoRecordOnSecondFluxCrossing(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FluxNeutrino = true
	ctx.DetectorRadius = EarthRadius - 5e3
	ctx.EnergyCut = 1
	require.NoError(t, ctx.Validate())

	var sawNeutrino, sawAncestor bool
	var maxCrossings int
	sink := func(r Record) {
		switch r.(type) {
		case NeutrinoRecord:
			sawNeutrino = true
		case AncestorRecord:
			sawAncestor = true
		}
	}

	for i := 0; i < 200 && !sawNeutrino; i++ {
		primary := &State{
			Species:   NuTau,
			Position:  r3.Vec{X: EarthRadius + 1e4, Y: 0, Z: 0},
			Direction: r3.Unit(r3.Vec{X: -1, Y: 0.05, Z: 0}),
			Energy:    1e9,
			Weight:    1,
		}
		require.NoError(t, ctx.RunForward(int64(i), primary, sink))
		if primary.Side.CrossCount > maxCrossings {
			maxCrossings = primary.Side.CrossCount
		}
	}

	assert.True(t, sawNeutrino, "expected a NeutrinoRecord once some ray re-exits the virtual detection surface twice")
	assert.True(t, sawAncestor, "the primary ancestor must be dumped before the flux-neutrino record")
	assert.GreaterOrEqual(t, maxCrossings, 2, "a chord through the detector sphere should register at least two crossings")
}

func TestRunForwardRejectsStaleSampler(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Sampler.Energy = Range{1e8, 1e12}
	primary := &State{Species: NuTau, Position: r3.Vec{X: EarthRadius, Y: 0, Z: 0}, Direction: r3.Unit(r3.Vec{X: 1, Y: 0, Z: 0}), Energy: 1e9, Weight: 1}
	err := ctx.RunForward(0, primary, func(Record) {})
	assert.Error(t, err)
}
