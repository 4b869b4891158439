package danton

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// minStep is the step floor: avoids pathological zero-progress (spec §4.2).
const minStep = 1e-3 // 1 mm

// CrossingState is the flux-neutrino virtual-surface tri-state (spec §3).
type CrossingState int

const (
	CrossingDisabled CrossingState = iota
	CrossingInside
	CrossingOutside
)

// StepResult is the geometry oracle's answer: the shell index the query
// point currently sits in (-1 outside the simulation domain) and the
// advisory step length to the next relevant shell boundary.
type StepResult struct {
	Shell int
	Step  float64
	// Exit is set when flux-neutrino mode detects a crossing of the virtual
	// detection surface; the caller must terminate the step with an EXIT
	// event rather than advancing by Step.
	Exit bool
}

// Step implements the geometry oracle (C2): maps a point/direction to a
// shell index and a safe step length to the next shell boundary, per
// spec.md §4.2 (library-authoritative variant — no r_out[i+1] shift, no
// 1-meter subtraction; see DESIGN.md Open Question 1).
func (e *Earth) Step(p, d r3.Vec, side *SideData, fluxNeutrino, decayMode bool, detectorRadius float64) StepResult {
	r := r3.Norm(p)
	if r > OuterBound {
		return StepResult{Shell: -1, Step: 0}
	}

	i := 0
	for i < NumShells && r > e.Shells[i].OuterRadius {
		i++
	}
	if i >= NumShells {
		return StepResult{Shell: -1, Step: 0}
	}

	b := r3.Dot(p, d)
	rOut := e.Shells[i].OuterRadius
	step := outgoingDistance(b, rOut, r)

	if i > 0 && b < 0 {
		rIn := e.Shells[i-1].OuterRadius
		if s, ok := innerIntersection(b, rIn, r); ok && s < step {
			step = s
		}
	}
	if step < minStep {
		step = minStep
	}

	density, _ := e.Shells[i].At(r)
	side.Shell = i
	side.Density = density
	side.Radius = r

	if fluxNeutrino && !decayMode {
		if res, exited := e.checkFluxCrossing(p, d, side, detectorRadius); exited {
			return res
		}
	}
	if !side.IsTau && i > 13 {
		// Neutrinos past the outer atmosphere have escaped (spec §4.2 step 7).
		return StepResult{Shell: i, Step: 0}
	}

	return StepResult{Shell: i, Step: step}
}

// outgoingDistance computes the distance to the outgoing intersection with
// a sphere of radius rOut, from a point at radius r with b = p·d. Negative
// discriminants are clamped to 0 (spec §4.2 numerical policy).
func outgoingDistance(b, rOut, r float64) float64 {
	disc := b*b + rOut*rOut - r*r
	if disc < 0 {
		disc = 0
	}
	dist := math.Sqrt(disc)
	return dist - b
}

// innerIntersection computes the smaller strictly-positive root for the
// intersection with an inner boundary, used for inward-pointing rays.
func innerIntersection(b, rIn, r float64) (float64, bool) {
	disc := b*b + rIn*rIn - r*r
	if disc <= 0 {
		return 0, false
	}
	dist := math.Sqrt(disc)
	s := -b - dist
	return s, s > 0
}

// checkFluxCrossing maintains the is_inside tri-state for flux-neutrino mode
// (spec §4.2 step 6): whenever the ray toggles between inside and outside
// the virtual detection surface, it returns step 0 with Exit set, handing
// control back to the caller as an EXIT event. It does not count
// crossings itself — spec §4.6 step 3 assigns cross_count bookkeeping and
// the first-crossing-resume/second-crossing-emit decision to the forward
// driver, not the geometry oracle.
func (e *Earth) checkFluxCrossing(p, d r3.Vec, side *SideData, detectorRadius float64) (StepResult, bool) {
	r := r3.Norm(p)
	inside := r <= detectorRadius

	switch side.Crossing {
	case CrossingDisabled:
		if inside {
			side.Crossing = CrossingInside
		} else {
			side.Crossing = CrossingOutside
		}
		return StepResult{}, false
	case CrossingInside:
		if !inside {
			side.Crossing = CrossingOutside
			return StepResult{Shell: side.Shell, Step: 0, Exit: true}, true
		}
	case CrossingOutside:
		if inside {
			side.Crossing = CrossingInside
			return StepResult{Shell: side.Shell, Step: 0, Exit: true}, true
		}
	}
	return StepResult{}, false
}
