package danton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEarthShellRadiiIncreasing(t *testing.T) {
	e := NewEarth(false)
	for i := 1; i < NumShells; i++ {
		assert.Greaterf(t, e.Shells[i].OuterRadius, e.Shells[i-1].OuterRadius,
			"shell %d outer radius must exceed shell %d", i, i-1)
	}
}

func TestNewEarthOuterBoundMatchesLastShell(t *testing.T) {
	e := NewEarth(false)
	assert.Equal(t, OuterBound, e.Shells[NumShells-1].OuterRadius)
	assert.Equal(t, 2*GeoOrbit, OuterBound)
}

func TestNewEarthPemNoSeaReplacesSeaShell(t *testing.T) {
	withSea := NewEarth(false)
	noSea := NewEarth(true)

	assert.Equal(t, 3.33334, withSea.Shells[SeaShellIndex].Z)
	assert.Equal(t, withSea.Shells[RockShellIndex].Z, noSea.Shells[SeaShellIndex].Z)
	assert.Equal(t, withSea.Shells[RockShellIndex].A, noSea.Shells[SeaShellIndex].A)
	assert.Equal(t, withSea.Shells[SeaShellIndex].OuterRadius, noSea.Shells[SeaShellIndex].OuterRadius,
		"swapping composition must not move the shell boundary")
}

func TestShellDensityPositiveAtPemBoundaries(t *testing.T) {
	e := NewEarth(false)
	for i := 0; i < 9; i++ {
		r := e.Shells[i].OuterRadius
		rho, _ := e.Shells[i].At(r)
		require.Greater(t, rho, 0.0)
	}
}

func TestAtmosphereDensityDecreasesWithAltitude(t *testing.T) {
	e := NewEarth(false)
	prevRho := 1e30
	for i := AtmosphereBase; i < NumShells-1; i++ {
		r := e.Shells[i].OuterRadius
		rho, _ := e.Shells[i].At(r)
		assert.Less(t, rho, prevRho, "density should decrease with altitude")
		prevRho = rho
	}
}
