package danton

import "fmt"

// Mode selects the run controller's top-level behaviour (spec §4.8).
type Mode int

const (
	ModeForward Mode = iota
	ModeBackward
	ModeGrammage
)

// Context bundles everything a run needs: the validated Sampler, the PRNG
// stream, the Earth model, the three external engine ports, and the
// run-level knobs (spec §3 "Context"). It is not safe for concurrent use —
// the CLI process owns exactly one (spec §5).
type Context struct {
	Earth     *Earth
	Sampler   *Sampler
	RNG       *PRNG
	Neutrino  NeutrinoEngine
	Lepton    LeptonEngine
	Decay     DecayEngine
	Materials MaterialTable

	Mode             Mode
	EnergyCut        float64
	TausRequested    int
	FluxNeutrino     bool
	DetectorRadius   float64
	LongitudinalOnly bool
	// PrimaryChannel restricts the backward driver's stage 5 acceptance
	// (spec §4.7) to primaries of this species; the zero value (Hadron,
	// never a legitimate primary) accepts any emerging species.
	PrimaryChannel Species

	// Medium adapts Earth, FluxNeutrino, and DetectorRadius into the single
	// callback surface the transport engines step through (DESIGN.md C5);
	// rebuilt on every Validate call.
	Medium *MediumAdapter

	samplerHash [32]byte
}

// NewContext builds a Context with the deterministic reference engines
// wired in (spec §4.9); a production build would instead inject cgo-backed
// engines at the same three interface fields.
func NewContext(earth *Earth, sampler *Sampler, rng *PRNG, materials MaterialTable) *Context {
	return &Context{
		Earth:     earth,
		Sampler:   sampler,
		RNG:       rng,
		Neutrino:  newReferenceNeutrinoEngine(),
		Lepton:    newReferenceLeptonEngine(),
		Decay:     newReferenceDecayEngine(),
		Materials: materials,
		EnergyCut: 1e3,
	}
}

// Validate checks the Context is internally consistent and that its Sampler
// has been validated, then caches the sampler's hash for staleness checks
// at run time (spec §3, DESIGN.md Open Question 3).
func (c *Context) Validate() error {
	if c.Earth == nil {
		return fmt.Errorf("danton: context has no Earth model")
	}
	if c.Sampler == nil {
		return fmt.Errorf("danton: context has no Sampler")
	}
	if c.RNG == nil {
		return fmt.Errorf("danton: context has no PRNG")
	}
	if c.Neutrino == nil || c.Lepton == nil || c.Decay == nil {
		return fmt.Errorf("danton: context is missing a transport engine")
	}
	if c.FluxNeutrino && c.Mode == ModeBackward {
		return fmt.Errorf("danton: flux-neutrino mode and backward (decay) mode are mutually exclusive")
	}
	if err := c.Sampler.Validate(); err != nil {
		return fmt.Errorf("danton: invalid sampler: %w", err)
	}
	if c.FluxNeutrino && c.DetectorRadius <= 0 {
		return fmt.Errorf("danton: flux-neutrino mode requires a positive detector radius")
	}
	// spec §4.8 pre-flight: a forward+decay-mode sampler cannot mix
	// neutrino and tau primary species in one run.
	if c.Mode == ModeForward && c.Sampler.NeutrinoWeight() > 0 &&
		(c.Sampler.SpeciesWeight[SpeciesTau] > 0 || c.Sampler.SpeciesWeight[SpeciesTauBar] > 0) {
		return fmt.Errorf("danton: forward decay-mode sampler cannot mix neutrino and tau primary species")
	}
	// spec §4.8 pre-flight: tau-decay (backward) runs require a
	// non-degenerate starting-altitude range.
	if c.Mode == ModeBackward && c.Sampler.Altitude.Lo >= c.Sampler.Altitude.Hi {
		return fmt.Errorf("danton: tau-decay backward runs require a non-degenerate altitude range, got [%g, %g]",
			c.Sampler.Altitude.Lo, c.Sampler.Altitude.Hi)
	}
	c.samplerHash = c.Sampler.Hash()
	c.Medium = &MediumAdapter{Earth: c.Earth, FluxNeutrino: c.FluxNeutrino, DetectorRadius: c.DetectorRadius}
	return nil
}

// checkSamplerFresh re-validates that the sampler was not mutated since the
// last Validate call (spec §3 staleness rule).
func (c *Context) checkSamplerFresh() error {
	if c.Sampler.Stale(c.samplerHash) {
		return fmt.Errorf("danton: sampler was modified after Context.Validate; re-validate before running")
	}
	return nil
}
