package danton

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Backward Monte-Carlo bias constants, unchanged from spec.md §4.7: λ₀ is
// the BMC mean free path (kg/m^2), p1 the decay/production biasing
// probability, and DECAY_BIAS the undecay importance parameter.
const (
	bmcLambda0   = 3.0e7 // kg/m^2
	bmcP1        = 0.1
	bmcDecayBias = 6.0
)

// ancestorWeightCoeff, ancestorWeightExp are the empirical branching-ratio
// weight the BMC driver folds into the primary neutrino flux estimate
// (spec §4.7): w = coeff * E^exp * rho for the τ-parent channel.
const (
	ancestorWeightCoeff = 1.63e-17
	ancestorWeightExp   = 1.363
)

// maxBackwardGenerations bounds the tau-regeneration recursion of spec §4.7
// stage 4 — a safety valve against runaway chains, not itself a physical
// parameter.
const maxBackwardGenerations = 8

// backwardRun carries per-event bookkeeping for the BMC driver, mirroring
// forwardRun's shape (spec §9: same idiom for both drivers).
type backwardRun struct {
	ctx     *Context
	eventID int64
	sink    func(Record)
}

// RunBackward drives the Backward Monte-Carlo (C7), implementing the five
// stages of spec §4.7: (1) invert the detector-side tau decay to recover
// its production-side momentum via the decay Jacobian; (2) propagate the
// tau backward through the Earth with a biased grammage draw, capped at
// grammage_max, applying the biased decay/production selection whenever the
// tentative vertex lands in air while upgoing; (3) invert the production
// interaction to a parent neutrino via the cross-section-based Jacobian;
// (4) transport that neutrino backward to the simulation boundary,
// recursing into another tau generation whenever the ancestor callback
// decides the current vertex is itself a tau decay; (5) accept the emerging
// primary only if it matches the requested channel. A neutrino-species
// detector state (spec §4.8 "neutrino for neutrino-flux targets") skips
// straight to stage 4. No C analogue exists for any of this; spec §4.7 is
// the sole authority.
func (c *Context) RunBackward(eventID int64, detector *State, sink func(Record)) error {
	if err := c.checkSamplerFresh(); err != nil {
		return err
	}
	run := &backwardRun{ctx: c, eventID: eventID, sink: sink}

	if !detector.Species.IsTau() {
		neutrino := detector.Clone()
		return run.transportNeutrinoBackward(&neutrino, 0)
	}
	return run.transportFromTauDetector(detector)
}

// transportFromTauDetector implements stage 1: the decay-inversion Jacobian
// m_τ/(c·τ⁰·P_f), then hands off to the stage 2-4 chain.
func (run *backwardRun) transportFromTauDetector(detector *State) error {
	pf := math.Sqrt(detector.Energy * (detector.Energy + 2*TauMass))
	if pf <= 0 {
		return nil
	}
	tau := detector.Clone()
	tau.Weight *= TauMass / (TauCTau0 * pf)
	return run.tauChain(&tau, detector.Clone(), 0)
}

// tauChain runs stages 2 and 3 for one tau generation — backward
// propagation to a production vertex, then inversion of that vertex to a
// parent neutrino — and, on success, hands the neutrino to stage 4.
// decayVertex is the state at which this generation's tau was found (the
// original detector tau for generation 0, or the point where Undecay
// reconstructed a regenerated tau for later generations), used only for the
// TauPairRecord log entry.
func (run *backwardRun) tauChain(tau *State, decayVertex State, generation int) error {
	x0 := tau.Grammage
	if !run.propagateTauBackward(tau) {
		return nil
	}
	neutrino, ok := run.invertProductionVertex(tau, x0)
	if !ok {
		return nil
	}
	run.sink(TauPairRecord{Generation: generation, Species: tau.Species, Production: tau.Clone(), Decay: decayVertex})
	return run.transportNeutrinoBackward(&neutrino, generation)
}

// propagateTauBackward implements spec §4.7 stage 2: the tau is stepped
// backward (reversed direction, energy-gaining) through a biased exponential
// grammage draw capped at grammage_max = x0 + Δx, Δx = -λ₀·ln(u). When the
// tentative vertex the cap lands on is in air and upgoing, the biased
// decay/production selection decides whether to accept it as the
// production vertex (probability p1, reweighted by pD/p1) or draw a fresh
// grammage_max and keep propagating (reweighted by pB/(1-p1)). It returns
// false if the tau exits the domain, runs out of band, or its weight
// collapses before a vertex is accepted.
func (run *backwardRun) propagateTauBackward(tau *State) bool {
	c := run.ctx
	rng := c.RNG

	for {
		u := rng.Uniform01()
		deltaX := -bmcLambda0 * math.Log(1-u)
		grammageMax := tau.Grammage + deltaX

		switch c.Lepton.Transport(rng, c.Medium, tau, false, grammageMax) {
		case LeptonNoVertex, LeptonOutOfBand:
			return false
		case LeptonVertexCandidate:
			if tau.Side.Shell < AtmosphereBase || !isUpgoing(tau.Position, tau.Direction) {
				return true
			}
			pv := math.Sqrt(tau.Energy * (tau.Energy + 2*TauMass))
			lambdaD := TauCTau0 * pv / TauMass
			density := tau.Side.Density
			if density <= 0 {
				density = 1e-21
			}
			lambdaB := bmcLambda0 / density
			pD := lambdaB / (lambdaB + lambdaD)
			pB := lambdaD / (lambdaB + lambdaD)

			if rng.Uniform01() < bmcP1 {
				tau.Weight *= pD / bmcP1
				return true
			}
			tau.Weight *= pB / (1 - bmcP1)
			if tau.Dead() {
				return false
			}
			continue
		default:
			return false
		}
	}
}

// isUpgoing reports whether a ray at p heading along dir is moving away
// from the Earth's center — the atmosphere-entry geometry spec §4.7 stage 2
// tests before applying the biased decay/production selection.
func isUpgoing(p, dir r3.Vec) bool {
	return r3.Dot(p, dir) > 0
}

// invertProductionVertex implements spec §4.7 stage 3: it reconstructs the
// parent neutrino of the production vertex tau sits at, weighting by
// w ← w·λB·λD / ((λB+λD)·λP·p0), p0 = exp(-(x-x0)/λ₀). x0 is the tau's
// accumulated grammage before stage 2's backward propagation began.
func (run *backwardRun) invertProductionVertex(tau *State, x0 float64) (State, bool) {
	c := run.ctx
	if tau.Energy <= 0 {
		return State{}, false
	}
	density := tau.Side.Density
	if density <= 0 {
		density = 1e-21
	}

	pv := math.Sqrt(tau.Energy * (tau.Energy + 2*TauMass))
	lambdaD := TauCTau0 * pv / TauMass
	lambdaB := bmcLambda0 / density
	lambdaP := c.Neutrino.InteractionLength() / density
	p0 := math.Exp(-(tau.Grammage - x0) / bmcLambda0)
	if p0 <= 0 {
		return State{}, false
	}

	weight := lambdaB * lambdaD / ((lambdaB + lambdaD) * lambdaP * p0)

	neutrino := tau.Clone()
	if tau.Species == Tau {
		neutrino.Species = NuTau
	} else {
		neutrino.Species = NuTauBar
	}
	inel := c.Neutrino.Inelasticity()
	neutrino.Energy = (tau.Energy + TauMass) / (1 - inel)
	neutrino.Weight *= weight
	if neutrino.Dead() {
		return State{}, false
	}
	return neutrino, true
}

// transportNeutrinoBackward implements spec §4.7 stage 4: the neutrino
// engine is run backward until EXIT (stage 5 follows) or until its energy
// exceeds the sampler's requested band. Whenever the ancestor callback
// decides the current vertex is a tau decay, the recovered parent is
// inverted via Undecay and, if it is indeed another tau, recursed into the
// stage 2-4 chain at the next generation (spec §4.7 stage 4, last clause).
func (run *backwardRun) transportNeutrinoBackward(neutrino *State, generation int) error {
	c := run.ctx

	for {
		if neutrino.Energy > c.Sampler.Energy.Hi {
			return nil
		}
		_, event := c.Neutrino.Transport(c.RNG, c.Medium, neutrino, true, defaultAncestorSelector)
		switch event {
		case NeutrinoExited, NeutrinoCrossed:
			return run.acceptPrimary(neutrino)
		case NeutrinoTauOrigin:
			if generation >= maxBackwardGenerations {
				return nil
			}
			tau, weight, ok := c.Decay.Undecay(c.RNG, neutrino, bmcDecayBias)
			if !ok {
				return nil
			}
			tau.Weight *= weight
			if tau.Dead() {
				return nil
			}
			return run.tauChain(&tau, neutrino.Clone(), generation+1)
		default:
			return nil
		}
	}
}

// acceptPrimary implements spec §4.7 stage 5: the emerging species must
// match the requested primary channel (c.PrimaryChannel; the zero value —
// Hadron, never a valid channel — means accept any), otherwise the event is
// discarded with weight 0 rather than emitted.
func (run *backwardRun) acceptPrimary(neutrino *State) error {
	c := run.ctx
	if c.PrimaryChannel != 0 && neutrino.Species != c.PrimaryChannel {
		return nil
	}
	if neutrino.Dead() {
		return nil
	}
	run.sink(AncestorRecord{
		EventID: run.eventID, Species: neutrino.Species, Energy: neutrino.Energy,
		Position: [3]float64{neutrino.Position.X, neutrino.Position.Y, neutrino.Position.Z},
		Weight:   neutrino.Weight,
	})
	return nil
}

// defaultAncestorSelector implements the ancestor branching-ratio callback
// of spec §4.7: at each backward step of a ν_τ/ν̄_τ, either the neutrino is
// itself the genuine primary (weight 1) or it was produced by an upstream
// tau decay, weighted by the empirical branching factor coeff·E^exp·ρ (spec
// §4.7's τ-parent channel weight). The two outcomes are chosen by Russian
// roulette against their combined weight so the sampling stays unbiased in
// expectation; for ν̄_e (spec: "only ν̄_e is a parent") this callback is
// never consulted, since the neutrino engine only calls it for ν_τ/ν̄_τ.
func defaultAncestorSelector(rng *PRNG, species Species, energy, density float64) (isTauOrigin bool, weight float64) {
	tauWeight := ancestorWeightCoeff * math.Pow(energy, ancestorWeightExp) * density
	total := 1 + tauWeight
	if tauWeight <= 0 {
		return false, total
	}
	if rng.Uniform01()*total < tauWeight {
		return true, total / tauWeight
	}
	return false, total
}
