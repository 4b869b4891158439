package danton

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// MediumAdapter binds the Earth model together with the run-level
// flux-neutrino configuration into the single callback surface the three
// external engines step through (spec §4.5 "transport binding"; DESIGN.md
// C5). decayMode, passed per call rather than stored, distinguishes a
// charged-lepton step (flux-crossing detection never applies) from a
// neutrino step (where it does, spec §4.2 step 6).
type MediumAdapter struct {
	Earth          *Earth
	FluxNeutrino   bool
	DetectorRadius float64
}

// Step forwards to Earth.Step with the adapter's captured flux-neutrino
// configuration (spec §4.2).
func (m *MediumAdapter) Step(p, d r3.Vec, side *SideData, decayMode bool) StepResult {
	return m.Earth.Step(p, d, side, m.FluxNeutrino, decayMode, m.DetectorRadius)
}

// NeutrinoEvent reports what a NeutrinoEngine.Transport call ended on.
type NeutrinoEvent int

const (
	// NeutrinoExited means the neutrino left the simulation domain entirely.
	NeutrinoExited NeutrinoEvent = iota
	// NeutrinoCrossed means a flux-neutrino virtual-surface crossing was
	// detected (spec §4.2 step 6); only reachable in forward mode.
	NeutrinoCrossed
	// NeutrinoInteracted means a CC/NC-like interaction produced a secondary.
	NeutrinoInteracted
	// NeutrinoTauOrigin is backward-mode only: the ancestor callback decided
	// this vertex is where the neutrino's parent tau decayed (spec §4.7
	// stage 4).
	NeutrinoTauOrigin
)

// AncestorSelector is the backward-mode ancestor branching-ratio callback
// (spec §4.7 "Ancestor callback"): given the current neutrino species,
// energy, and local density, it decides whether this step's neutrino
// originates from a tau decay (isTauOrigin) and returns the weight to fold
// in for that decision, chosen so the choice is statistically unbiased.
type AncestorSelector func(rng *PRNG, species Species, energy, density float64) (isTauOrigin bool, weight float64)

// NeutrinoEngine is the out-of-scope ENT-like neutrino transport boundary
// (spec §4.9). Context holds one by value; the module ships a deterministic
// reference implementation sufficient to drive the drivers end-to-end — it
// is explicitly a stand-in, not a reimplementation of ENT's cross-section
// tables (spec §1 "Out of scope").
type NeutrinoEngine interface {
	// Transport advances neutrino by one interaction step (forward mode) or
	// iterates it backward until a terminal event (backward mode, selected
	// by the backward flag; ancestor is consulted at every step of a
	// ν_τ/ν̄_τ in that mode and must be non-nil there). product is valid only
	// when the returned event is NeutrinoInteracted.
	Transport(rng *PRNG, medium *MediumAdapter, neutrino *State, backward bool, ancestor AncestorSelector) (product State, event NeutrinoEvent)
	// InteractionLength is λP, the cross-section-based mean free path
	// expressed as column depth (kg/m^2), used by the backward driver's
	// production-vertex inversion (spec §4.7 stage 3).
	InteractionLength() float64
	// Inelasticity is the fixed fraction of energy transferred to the
	// outgoing lepton per interaction.
	Inelasticity() float64
}

// LeptonStopReason reports why a LeptonEngine.Transport call returned.
type LeptonStopReason int

const (
	// LeptonDecayed is forward-only: the tau decayed.
	LeptonDecayed LeptonStopReason = iota
	// LeptonExitedDomain is forward-only: the tau left the simulation domain
	// or fell below the energy budget without decaying.
	LeptonExitedDomain
	// LeptonNoVertex is backward-only: the tau left the domain before
	// grammage_max was reached, so no tentative production vertex was found
	// (spec §4.7 stage 2, termination (a)).
	LeptonNoVertex
	// LeptonOutOfBand is backward-only: the reconstructed energy exceeded
	// the physically relevant band (stage 2, termination (b)).
	LeptonOutOfBand
	// LeptonWeightZero means the accumulated weight collapsed to zero.
	LeptonWeightZero
	// LeptonVertexCandidate is backward-only: grammage_max was reached
	// while still inside the domain — a tentative production vertex.
	LeptonVertexCandidate
)

// LeptonEngine is the out-of-scope PUMAS-like charged-lepton transport
// boundary (spec §4.9 and §6): honors a forward/backward flag and a
// grammage_max cap used only in backward mode (spec §4.7 stage 2).
type LeptonEngine interface {
	// Transport advances tau by continuous energy loss until a terminal
	// condition. forward selects energy-losing/decay-sampling forward
	// transport; when false, tau is propagated in reverse along -Direction,
	// gaining energy, and grammageMax bounds how far back it may travel.
	Transport(rng *PRNG, medium *MediumAdapter, tau *State, forward bool, grammageMax float64) LeptonStopReason
}

// DecayEngine is the out-of-scope ALOUETTE/TAUOLA-like tau decay boundary
// (spec §4.9 and §6).
type DecayEngine interface {
	// Decay samples one tau decay channel and returns its final-state
	// products (neutrinos and, when applicable, a loggable hadron/charged
	// product set). ok is false if sampling failed after internal retries.
	Decay(rng *PRNG, tau *State) (products []State, ok bool)
	// Undecay inverts a tau decay: given an observed ν_τ/ν̄_τ daughter, it
	// reconstructs a plausible parent tau, biasing the reconstructed energy
	// by bias (spec §6 "undecay(pid, momentum, polarization_cb, bias,
	// &weight)"; used by spec §4.7 stage 4) and returning the Jacobian weight
	// that un-biases the draw.
	Undecay(rng *PRNG, neutrino *State, bias float64) (tau State, weight float64, ok bool)
}

// referenceNeutrinoEngine is a minimal, deterministic stand-in: each forward
// Transport call ends at the first interaction, placed by a grammage draw
// from an exponential law with a fixed interaction length, or at the exit.
// Every flavour interacts; the neutrino keeps a fixed fraction of its
// energy, and the secondary is a tau for a ν_τ/ν̄_τ and a hadron for any
// other flavour. In backward mode it instead walks the reversed ray,
// consulting the ancestor callback at every step of a ν_τ/ν̄_τ. This is
// enough to exercise every transport path (C6, C7) without claiming to
// model real cross-sections.
type referenceNeutrinoEngine struct {
	// interactionLength is the column depth (kg/m^2) scale of the
	// exponential interaction-grammage law — also λP (spec §4.7 stage 3).
	interactionLength float64
	// inelasticity is the fixed fraction of energy transferred to the
	// outgoing lepton/hadron system per interaction.
	inelasticity float64
}

func newReferenceNeutrinoEngine() *referenceNeutrinoEngine {
	return &referenceNeutrinoEngine{interactionLength: 1.0e7, inelasticity: 0.25}
}

func (e *referenceNeutrinoEngine) InteractionLength() float64 { return e.interactionLength }
func (e *referenceNeutrinoEngine) Inelasticity() float64      { return e.inelasticity }

func (e *referenceNeutrinoEngine) Transport(rng *PRNG, medium *MediumAdapter, neutrino *State, backward bool, ancestor AncestorSelector) (State, NeutrinoEvent) {
	dir := neutrino.Direction
	if backward {
		dir = r3.Scale(-1, dir)
	}
	for {
		res := medium.Step(neutrino.Position, dir, &neutrino.Side, false)
		if res.Exit {
			return State{}, NeutrinoCrossed
		}
		if res.Shell < 0 || res.Step <= 0 {
			return State{}, NeutrinoExited
		}
		density := neutrino.Side.Density
		if density <= 0 {
			density = 1e-21
		}

		if backward {
			if ancestor != nil && (neutrino.Species == NuTau || neutrino.Species == NuTauBar) {
				isTauOrigin, weight := ancestor(rng, neutrino.Species, neutrino.Energy, density)
				neutrino.Weight *= weight
				if isTauOrigin {
					neutrino.advance(res.Step, density, dir)
					return State{}, NeutrinoTauOrigin
				}
			}
			neutrino.advance(res.Step, density, dir)
			continue
		}

		depth := -e.interactionLength * math.Log(1-rng.Uniform01())
		dx := res.Step
		dGrammage := dx * density
		if dGrammage >= depth && depth > 0 {
			dx = depth / density
			neutrino.advance(dx, density, dir)
			return e.interact(neutrino), NeutrinoInteracted
		}
		neutrino.advance(dx, density, dir)
		if neutrino.Energy <= 0 {
			return State{}, NeutrinoExited
		}
	}
}

func (e *referenceNeutrinoEngine) interact(neutrino *State) State {
	product := neutrino.Clone()
	eOut := neutrino.Energy * (1 - e.inelasticity)
	product.Energy = neutrino.Energy - eOut
	product.Weight = neutrino.Weight

	switch neutrino.Species {
	case NuTau:
		product.Species = Tau
	case NuTauBar:
		product.Species = TauBar
	case NuEBar:
		product.Species = Hadron
	default:
		product.Species = Hadron
	}
	neutrino.Energy = eOut
	return product
}

// referenceLeptonEngine is a minimal deterministic stand-in for PUMAS:
// continuous energy loss at a fixed dE/dx times density, until either the
// tau decays (drawn from the relativistic decay law), leaves the domain, or
// loses all its energy (forward), or until grammage_max is reached (backward, where
// the tau instead gains energy walking back in time).
type referenceLeptonEngine struct {
	// DEDX is the mass energy-loss coefficient, GeV per (kg/m^2).
	DEDX float64
}

func newReferenceLeptonEngine() *referenceLeptonEngine {
	return &referenceLeptonEngine{DEDX: 2.0e-6}
}

// backwardEnergyCeiling stands in for PUMAS's tabulated energy-loss grid
// ceiling (spec §4.7 stage 2, termination (b) "out of band").
const backwardEnergyCeiling = 1e13 // GeV

func (e *referenceLeptonEngine) Transport(rng *PRNG, medium *MediumAdapter, tau *State, forward bool, grammageMax float64) LeptonStopReason {
	dir := tau.Direction
	if !forward {
		dir = r3.Scale(-1, dir)
	}
	for {
		res := medium.Step(tau.Position, dir, &tau.Side, true)
		if res.Shell < 0 || res.Step <= 0 {
			if forward {
				return LeptonExitedDomain
			}
			return LeptonNoVertex
		}
		density := tau.Side.Density

		if forward {
			gamma := 1 + tau.Energy/TauMass
			beta := math.Sqrt(1 - 1/(gamma*gamma))
			decayLength := gamma * beta * TauCTau0
			decayDistance := -decayLength * math.Log(1-rng.Uniform01())

			dx := res.Step
			if decayDistance < dx {
				dx = decayDistance
			}
			loss := e.DEDX * density * dx
			tau.advance(dx, density, dir)
			tau.Energy -= loss
			if tau.Energy < 0 {
				tau.Energy = 0
			}

			if decayDistance <= res.Step {
				return LeptonDecayed
			}
			if tau.Energy <= 0 {
				return LeptonExitedDomain
			}
			continue
		}

		dx := res.Step
		if density > 0 {
			remaining := grammageMax - tau.Grammage
			if remaining <= 0 {
				return LeptonVertexCandidate
			}
			if dx*density > remaining {
				dx = remaining / density
			}
		}
		loss := e.DEDX * density * dx
		tau.advance(dx, density, dir)
		tau.Energy += loss
		if tau.Energy+TauMass > backwardEnergyCeiling {
			return LeptonOutOfBand
		}
		if tau.Grammage >= grammageMax {
			return LeptonVertexCandidate
		}
	}
}

// referenceDecayEngine is a minimal deterministic stand-in for
// ALOUETTE/TAUOLA: it emits the two "invisible" neutrinos required by
// lepton-number/charge conservation (ν̄_e or ν_e and ν_τ or ν̄_τ) plus one
// loggable hadron-like product carrying the remaining energy, rather than
// sampling TAUOLA's full decay-channel matrix element. Undecay is its
// inverse: given an observed ν_τ/ν̄_τ daughter it reconstructs a candidate
// parent tau.
type referenceDecayEngine struct{}

func newReferenceDecayEngine() *referenceDecayEngine { return &referenceDecayEngine{} }

func (e *referenceDecayEngine) Decay(rng *PRNG, tau *State) ([]State, bool) {
	if tau.Energy <= 0 {
		return nil, false
	}
	fNuTau := 0.3 + 0.1*rng.Uniform01()
	fOther := 0.3 + 0.1*rng.Uniform01()
	fHadron := 1 - fNuTau - fOther
	if fHadron < 0 {
		fHadron = 0
	}

	nuTau := State{Direction: tau.Direction, Position: tau.Position, Weight: tau.Weight, Energy: tau.Energy * fNuTau}
	other := State{Direction: tau.Direction, Position: tau.Position, Weight: tau.Weight, Energy: tau.Energy * fOther}
	hadron := State{Direction: tau.Direction, Position: tau.Position, Weight: tau.Weight, Energy: tau.Energy * fHadron, Species: Hadron}

	if tau.Species == Tau {
		nuTau.Species = NuTau
		other.Species = NuEBar
	} else {
		nuTau.Species = NuTauBar
		other.Species = NuE
	}
	return []State{nuTau, other, hadron}, true
}

func (e *referenceDecayEngine) Undecay(rng *PRNG, neutrino *State, bias float64) (State, float64, bool) {
	if neutrino.Energy <= 0 {
		return State{}, 0, false
	}
	if bias <= 0 {
		bias = 1
	}
	// fNuTau is drawn from the same energy-sharing law Decay uses, divided
	// by bias so the reconstructed parent energy is inflated and the rarer,
	// more energetic parent draws are not starved
	// (spec §6 "undecay(..., bias, &weight)"); weight is the Jacobian that
	// unbiases it back to the natural law.
	fNuTau := (0.3 + 0.1*rng.Uniform01()) / bias

	tau := neutrino.Clone()
	switch neutrino.Species {
	case NuTau:
		tau.Species = Tau
	case NuTauBar:
		tau.Species = TauBar
	default:
		return State{}, 0, false
	}
	tau.Energy = neutrino.Energy / fNuTau
	return tau, fNuTau, true
}
