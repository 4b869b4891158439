package danton

import "math"

// Shell radii, in m, following the Preliminary Earth Model (10 shells) plus
// four US-Standard atmosphere layers plus outer space. Index 0..14; outer
// radius strictly increasing (spec §3 invariant). Values are taken from the
// original single-file reference implementation, not re-derived.
const (
	EarthRadius = 6371.0e3  // R⊕, m
	GeoOrbit    = 42164.0e3 // geostationary orbit radius, m
	OuterBound  = 2 * GeoOrbit
)

// NumShells is the fixed shell count: 10 PEM shells (0-9), 4 atmospheric
// layers, 1 outer-space shell.
const NumShells = 15

// SeaShellIndex and RockShellIndex identify the two shells the --pem-no-sea
// option swaps between (spec §4.8, scenario E5).
const (
	SeaShellIndex  = 9
	RockShellIndex = 8
	AtmosphereBase = 10 // first atmospheric shell index
)

// DensityFunc returns the density at radius r (kg/m^3) and an advisory
// maximum step length (m) that PUMAS-like steppers should not exceed.
type DensityFunc func(r float64) (density, stepHint float64)

// Shell is one of the 15 radial zones of the stratified Earth model.
type Shell struct {
	OuterRadius float64
	Z, A        float64
	Density     DensityFunc
}

// Earth is the immutable stratified density/composition profile (C1).
type Earth struct {
	Shells [NumShells]Shell
}

// NewEarth builds the default 15-shell model. When pemNoSea is set, the sea
// shell (9) is replaced by the rock shell's (Z, A, density) — spec §4.8.
func NewEarth(pemNoSea bool) *Earth {
	e := &Earth{Shells: [NumShells]Shell{
		{1221.5e3, 13, 26, pemModel0},
		{3480.0e3, 13, 26, pemModel1},
		{5701.0e3, 13, 26, pemModel2},
		{5771.0e3, 13, 26, pemModel3},
		{5971.0e3, 13, 26, pemModel4},
		{6151.0e3, 13, 26, pemModel5},
		{6346.6e3, 13, 26, pemModel6},
		{6356.0e3, 13, 26, pemModel7},
		{6368.0e3, 13, 26, pemModel8},
		{EarthRadius, 3.33334, 6.00557, pemModel9},
		{EarthRadius + 4.0e3, 7.26199, 14.5477, ussModel0},
		{EarthRadius + 1.0e4, 7.26199, 14.5477, ussModel1},
		{EarthRadius + 4.0e4, 7.26199, 14.5477, ussModel2},
		{EarthRadius + 1.0e5, 7.26199, 14.5477, ussModel3},
		{OuterBound, 7.26199, 14.5477, spaceModel0},
	}}
	if pemNoSea {
		rock := e.Shells[RockShellIndex]
		rock.OuterRadius = e.Shells[SeaShellIndex].OuterRadius
		e.Shells[SeaShellIndex] = rock
	}
	return e
}

// pemModel0..pemModel6 are the PEM analytic polynomials, x = r/EarthRadius.
// Δs_max ≈ 1% of the local density scale height, a hint PUMAS-like steppers
// use to cap their step size.

func pemModel0(r float64) (float64, float64) {
	x := r / EarthRadius
	const a2 = -8.8381e3
	density := 13.0885e3 + a2*x*x
	xg := x
	if xg <= 5e-2 {
		xg = 5e-2
	}
	return density, 0.01 * EarthRadius / math.Abs(2*a2*xg)
}

func pemModel1(r float64) (float64, float64) {
	x := r / EarthRadius
	const a = 1.2638e3
	density := 12.58155e3 + x*(-a+x*(-3.6426e3-x*5.5281e3))
	return density, 0.01 * EarthRadius / a
}

func pemModel2(r float64) (float64, float64) {
	x := r / EarthRadius
	const a = 6.4761e3
	density := 7.9565e3 + x*(-a+x*(2.5283e3-x*3.0807e3))
	return density, 0.01 * EarthRadius / a
}

func pemModel3(r float64) (float64, float64) {
	x := r / EarthRadius
	const a = 1.4836e3
	return 5.3197e3 - a*x, 0.01 * EarthRadius / a
}

func pemModel4(r float64) (float64, float64) {
	x := r / EarthRadius
	const a = 8.0298e3
	return 11.2494e3 - a*x, 0.01 * EarthRadius / a
}

func pemModel5(r float64) (float64, float64) {
	x := r / EarthRadius
	const a = 3.8045e3
	return 7.1089e3 - a*x, 0.01 * EarthRadius / a
}

func pemModel6(r float64) (float64, float64) {
	x := r / EarthRadius
	const a = 0.6924e3
	return 2.691e3 + a*x, 0.01 * EarthRadius / a
}

// pemModel7 (lower crust), pemModel8 (rock), pemModel9 (sea) are uniform.
func pemModel7(float64) (float64, float64) { return 2.9e3, 0 }
func pemModel8(float64) (float64, float64) { return 2.6e3, 0 }
func pemModel9(float64) (float64, float64) { return 1.02e3, 0 }

// US-Standard atmosphere exponential layers, ρ(r) = (B/C)·exp(-(r-R⊕)/C).
func ussLayer(r, b, c float64) (float64, float64) {
	return (b / c) * math.Exp(-(r-EarthRadius)/c), 0.01 * c
}

func ussModel0(r float64) (float64, float64) { return ussLayer(r, 12226.562, 9941.8638) }
func ussModel1(r float64) (float64, float64) { return ussLayer(r, 11449.069, 8781.5355) }
func ussModel2(r float64) (float64, float64) { return ussLayer(r, 13055.948, 6361.4304) }
func ussModel3(r float64) (float64, float64) { return ussLayer(r, 5401.778, 7721.7016) }

// spaceModel0 is the outer-space density, ~10^6 hydrogen atoms per m^3.
func spaceModel0(float64) (float64, float64) { return 1e-21, 0 }

// At evaluates the shell's density and step hint at radius r.
func (s *Shell) At(r float64) (density, stepHint float64) {
	return s.Density(r)
}
