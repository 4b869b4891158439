package danton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestStepOutsideDomainReturnsNegativeShell(t *testing.T) {
	e := NewEarth(false)
	var side SideData
	p := r3.Vec{X: OuterBound * 2, Y: 0, Z: 0}
	d := r3.Unit(r3.Vec{X: 1, Y: 0, Z: 0})
	res := e.Step(p, d, &side, false, false, 0)
	assert.Equal(t, -1, res.Shell)
	assert.Zero(t, res.Step)
}

func TestStepAtEarthCenterIsInnermostShell(t *testing.T) {
	e := NewEarth(false)
	var side SideData
	p := r3.Vec{X: 1, Y: 0, Z: 0}
	d := r3.Unit(r3.Vec{X: 1, Y: 0, Z: 0})
	res := e.Step(p, d, &side, false, false, 0)
	assert.Equal(t, 0, res.Shell)
	assert.Greater(t, res.Step, 0.0)
}

func TestStepNeverBelowMinStep(t *testing.T) {
	e := NewEarth(false)
	var side SideData
	// A point exactly on a shell boundary, pointed outward, should still
	// yield a positive step no smaller than the 1mm floor (spec §4.2).
	p := r3.Vec{X: e.Shells[0].OuterRadius, Y: 0, Z: 0}
	d := r3.Unit(r3.Vec{X: 1, Y: 0, Z: 0})
	res := e.Step(p, d, &side, false, false, 0)
	require.GreaterOrEqual(t, res.Step, minStep)
}

func TestStepKillsNonTauNeutrinoPastAtmosphere(t *testing.T) {
	e := NewEarth(false)
	var side SideData
	side.IsTau = false
	r := e.Shells[13].OuterRadius + 1
	p := r3.Vec{X: r, Y: 0, Z: 0}
	d := r3.Unit(r3.Vec{X: 1, Y: 0, Z: 0})
	res := e.Step(p, d, &side, false, false, 0)
	assert.Zero(t, res.Step)
}

func TestCheckFluxCrossingTogglesInsideState(t *testing.T) {
	e := NewEarth(false)
	var side SideData
	side.Crossing = CrossingDisabled

	inside := r3.Vec{X: EarthRadius - 1000, Y: 0, Z: 0}
	res, exited := e.checkFluxCrossing(inside, r3.Vec{}, &side, EarthRadius)
	assert.False(t, exited)
	assert.Equal(t, CrossingInside, side.Crossing)
	_ = res

	outside := r3.Vec{X: EarthRadius + 1000, Y: 0, Z: 0}
	res, exited = e.checkFluxCrossing(outside, r3.Vec{}, &side, EarthRadius)
	assert.True(t, exited)
	assert.True(t, res.Exit)
	assert.Equal(t, CrossingOutside, side.Crossing)
}
