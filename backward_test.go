package danton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRunBackwardProducesConsistentWeights(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Mode = ModeBackward

	var records []Record
	sink := func(r Record) { records = append(records, r) }

	for i := 0; i < 50; i++ {
		detector := &State{
			Species:   Tau,
			Position:  r3.Vec{X: EarthRadius, Y: 0, Z: 0},
			Direction: r3.Unit(r3.Vec{X: -1, Y: 0.1, Z: 0}),
			Energy:    1e9,
			Weight:    1,
			Side:      SideData{Density: 1e-3},
		}
		require.NoError(t, ctx.RunBackward(int64(i), detector, sink))
	}

	for _, r := range records {
		if ancestor, ok := r.(AncestorRecord); ok {
			assert.GreaterOrEqual(t, ancestor.Weight, 0.0)
		}
	}
}

func TestPropagateTauBackwardAdvancesGrammage(t *testing.T) {
	ctx := newTestContext(t)
	run := &backwardRun{ctx: ctx}

	for i := 0; i < 20; i++ {
		tau := &State{
			Species:   Tau,
			Position:  r3.Vec{X: EarthRadius, Y: 0, Z: 0},
			Direction: r3.Unit(r3.Vec{X: -1, Y: 0.1, Z: 0}),
			Energy:    1e9,
			Weight:    1,
		}
		x0 := tau.Grammage
		if run.propagateTauBackward(tau) {
			assert.Greater(t, tau.Grammage, x0)
			assert.Greater(t, tau.Weight, 0.0)
		}
	}
}

func TestInvertProductionVertexWeightIsPositive(t *testing.T) {
	ctx := newTestContext(t)
	run := &backwardRun{ctx: ctx}

	tau := &State{
		Species:  Tau,
		Position: r3.Vec{X: EarthRadius, Y: 0, Z: 0},
		Energy:   1e9,
		Weight:   1,
		Grammage: 10,
		Side:     SideData{Density: 1e-3},
	}
	neutrino, ok := run.invertProductionVertex(tau, 0)
	require.True(t, ok)
	assert.Greater(t, neutrino.Weight, 0.0)
	assert.Equal(t, NuTau, neutrino.Species)
}
