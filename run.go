package danton

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// RunController drives a complete simulation: preflight validation, the
// event loop over one of the three modes (forward, backward, grammage scan),
// and record sink wiring — mirroring the teacher's PostPos/execses lifecycle
// (postpos.go: OpenSession/execses/CloseSession) generalized from "process a
// batch of observation epochs" to "process a batch of Monte-Carlo events".
type RunController struct {
	ctx     *Context
	logger  *Logger
	Summary RunSummary
}

// NewRunController wires a Context and Logger into a controller (spec §4.8).
func NewRunController(ctx *Context, logger *Logger) *RunController {
	return &RunController{ctx: ctx, logger: logger}
}

// Run executes Events events in the controller's configured Mode, writing
// every emitted Record through sink. It corresponds to danton.c's `main`
// event loop (lines 700-900) generalized to the three modes of spec §4.8.
func (rc *RunController) Run(events int, sink func(Record)) error {
	if err := rc.ctx.Validate(); err != nil {
		return err
	}
	if err := rc.preflight(events); err != nil {
		return err
	}
	wrapped := func(r Record) {
		rc.Summary.Observe(r)
		sink(r)
	}

	switch rc.ctx.Mode {
	case ModeForward:
		return rc.runForward(events, wrapped)
	case ModeBackward:
		return rc.runBackward(events, wrapped)
	case ModeGrammage:
		return rc.runGrammage(events, wrapped)
	default:
		return fmt.Errorf("danton: unknown run mode %d", rc.ctx.Mode)
	}
}

// preflight runs the mode-specific checks of spec §4.8 that the basic
// Context.Validate cross-field rules can't express because they need the
// requested event count: a grammage scan over a non-degenerate cos(theta)
// range needs at least 2 bins to produce a meaningful curve.
func (rc *RunController) preflight(events int) error {
	c := rc.ctx
	if c.Mode == ModeGrammage && c.Sampler.CosTheta.Lo != c.Sampler.CosTheta.Hi && events < 2 {
		return fmt.Errorf("danton: grammage mode over a non-degenerate cos(theta) range requires at least 2 bins, got %d", events)
	}
	return nil
}

func (rc *RunController) runForward(events int, sink func(Record)) error {
	for i := 0; i < events; i++ {
		if rc.ctx.TausRequested > 0 && rc.doneTaus() >= rc.ctx.TausRequested {
			break
		}
		primary := rc.samplePrimary(int64(i))
		rc.logger.Tracet(3, "forward event %d: species=%d energy=%.3E\n", i, int(primary.Species), primary.Energy)
		if err := rc.ctx.RunForward(int64(i), &primary, sink); err != nil {
			return fmt.Errorf("danton: event %d: %w", i, err)
		}
	}
	return nil
}

func (rc *RunController) runBackward(events int, sink func(Record)) error {
	for i := 0; i < events; i++ {
		detector := rc.sampleDetectorTau(int64(i))
		rc.logger.Tracet(3, "backward event %d: energy=%.3E\n", i, detector.Energy)
		if err := rc.ctx.RunBackward(int64(i), &detector, sink); err != nil {
			return fmt.Errorf("danton: event %d: %w", i, err)
		}
	}
	return nil
}

func (rc *RunController) runGrammage(events int, sink func(Record)) error {
	for i := 0; i < events; i++ {
		cosTheta := Linear(rc.ctx.Sampler.CosTheta, i, events, true, rc.ctx.RNG)
		grammage := rc.scanGrammage(cosTheta)
		sink(GrammageRecord{CosTheta: cosTheta, Grammage: grammage})
	}
	return nil
}

// scanGrammage integrates column depth along a ray of the given cos(theta)
// from the sampler's altitude floor to the top of the atmosphere (the
// geometry oracle ends non-tau rays past shell 13) — the
// grammage-only mode danton.c's `-g` flag selects (print_header_grammage).
func (rc *RunController) scanGrammage(cosTheta float64) float64 {
	sinTheta := 0.0
	if cosTheta < 1 {
		sinTheta = r3Sqrt(1 - cosTheta*cosTheta)
	}
	altitude := rc.ctx.Sampler.Altitude.Lo
	r0 := EarthRadius + altitude
	pos := r3.Vec{X: r0, Y: 0, Z: 0}
	dir := r3.Unit(r3.Vec{X: -cosTheta, Y: sinTheta, Z: 0})

	var side SideData
	var total float64
	for step := 0; step < 1_000_000; step++ {
		res := rc.ctx.Medium.Step(pos, dir, &side, false)
		if res.Shell < 0 || res.Step <= 0 {
			break
		}
		total += res.Step * side.Density
		pos = r3.Add(pos, r3.Scale(res.Step, dir))
	}
	return total
}

func r3Sqrt(x float64) float64 {
	if x < 0 {
		return 0
	}
	return math.Sqrt(x)
}

func (rc *RunController) doneTaus() int {
	return int(rc.Summary.TausDetected)
}

// samplePrimary draws one forward-mode primary neutrino state from the
// sampler's phase space (spec §4.4/§4.6): altitude, angle, and energy are
// each drawn via the log-or-linear / linear primitives, species via the
// SpeciesWeight table.
func (rc *RunController) samplePrimary(eventID int64) State {
	s := rc.ctx.Sampler
	rng := rc.ctx.RNG

	altitude := s.Altitude.Lo + (s.Altitude.Hi-s.Altitude.Lo)*rng.Uniform01()
	cosTheta := s.CosTheta.Lo + (s.CosTheta.Hi-s.CosTheta.Lo)*rng.Uniform01()
	energy, energyWeight := LogOrLinear(s.Energy, rng)
	species, speciesWeight := rc.sampleSpecies(rng)

	sinTheta := r3Sqrt(1 - cosTheta*cosTheta)
	r0 := EarthRadius + altitude
	pos := r3.Vec{X: r0, Y: 0, Z: 0}
	dir := r3.Unit(r3.Vec{X: -cosTheta, Y: sinTheta, Z: 0})

	return State{
		Species:   species,
		Position:  pos,
		Direction: dir,
		Energy:    energy,
		Weight:    energyWeight * speciesWeight,
	}
}

func (rc *RunController) sampleSpecies(rng *PRNG) (Species, float64) {
	s := rc.ctx.Sampler
	total := s.TotalWeight()
	u := rng.Uniform01() * total
	species := [numSamplerSpecies]Species{NuE, NuEBar, NuMu, NuMuBar, NuTau, NuTauBar, Tau, TauBar}
	acc := 0.0
	for i, w := range s.SpeciesWeight {
		if w <= 0 {
			continue
		}
		acc += w
		if u <= acc {
			return species[i], total / w
		}
	}
	return species[len(species)-1], 1
}

// sampleDetectorTau draws a backward-mode detector target at R⊕, weighted
// by the sampler's energy range, with cos(theta) drawn from the sampler's
// elevation range (spec §4.8: "draw cos theta from elevation") rather than
// its cos(theta) range, which only applies to forward-mode primaries. The
// species drawn from the sampler's weights decides the target: Tau/TauBar
// builds a decay-vertex target for the full stage 1-4 BMC chain, any
// neutrino species builds a neutrino-flux target that skips straight to
// stage 4 (spec §4.8: "construct either a tau ... or a neutrino").
func (rc *RunController) sampleDetectorTau(eventID int64) State {
	s := rc.ctx.Sampler
	rng := rc.ctx.RNG
	energy, energyWeight := LogOrLinear(s.Energy, rng)
	elevation := s.Elevation.Lo + (s.Elevation.Hi-s.Elevation.Lo)*rng.Uniform01()
	cosTheta := math.Sin(elevation * math.Pi / 180)
	sinTheta := r3Sqrt(1 - cosTheta*cosTheta)
	species, speciesWeight := rc.sampleSpecies(rng)

	pos := r3.Vec{X: EarthRadius, Y: 0, Z: 0}
	dir := r3.Unit(r3.Vec{X: -cosTheta, Y: sinTheta, Z: 0})
	return State{Species: species, Position: pos, Direction: dir, Energy: energy, Weight: energyWeight * speciesWeight}
}

// WriteHeader writes the per-mode column header, mirroring danton.c's
// print_header_* functions (lines 506-560).
func (rc *RunController) WriteHeader(w io.Writer) error {
	switch rc.ctx.Mode {
	case ModeGrammage:
		_, err := io.WriteString(w, "  cos(theta)    Grammage\n                (kg/m^2)\n")
		return err
	default:
		_, err := io.WriteString(w, "  EventId  PID       Energy          X            Y            Z        Weight\n")
		return err
	}
}
