package danton

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
)

// Range is a closed interval [Lo, Hi].
type Range struct {
	Lo, Hi float64
}

// SpeciesIndex orders the 8 sampler species for SpeciesWeight (spec §3).
const (
	SpeciesNuE = iota
	SpeciesNuEBar
	SpeciesNuMu
	SpeciesNuMuBar
	SpeciesNuTau
	SpeciesNuTauBar
	SpeciesTau
	SpeciesTauBar
	numSamplerSpecies
)

// Sampler is the validated configuration of energy, angle, altitude, and
// per-species weights that defines the source/target phase space (C4,
// spec §4.4). Following the teacher's options.go pattern, construction
// goes through a Default* constructor and an explicit Validate step before
// any run can start.
type Sampler struct {
	Altitude      Range // [z0, z1], m, >= 0
	CosTheta      Range // subset of [0,1]
	Elevation     Range // subset of [-90, 90], degrees
	Energy        Range // GeV; lo >= 100 GeV, hi >= 1e12 GeV
	SpeciesWeight [numSamplerSpecies]float64

	valid bool
	hash  [32]byte
}

// DefaultSampler mirrors the CLI's documented altitude, cos(theta) and
// energy defaults (spec §6). Its elevation range is [0, 0], not the CLI's
// default of [-90, 90].
func DefaultSampler() *Sampler {
	s := &Sampler{
		Altitude: Range{0, 0},
		CosTheta: Range{0.15, 0.25},
		Energy:   Range{1e7, 1e12},
	}
	s.SpeciesWeight[SpeciesNuTau] = 1
	s.SpeciesWeight[SpeciesNuTauBar] = 1
	return s
}

// Validate checks every rule of spec §4.4 and, on success, caches a
// validation hash; running a Context against a Sampler whose hash has
// since gone stale is a hard error (spec §3).
func (s *Sampler) Validate() error {
	if s.Altitude.Lo < 0 {
		return fmt.Errorf("danton: sampler altitude[0] must be >= 0, got %g", s.Altitude.Lo)
	}
	if s.Altitude.Lo > s.Altitude.Hi {
		return fmt.Errorf("danton: sampler altitude range is inverted: [%g, %g]", s.Altitude.Lo, s.Altitude.Hi)
	}
	if s.CosTheta.Lo < 0 || s.CosTheta.Lo > s.CosTheta.Hi || s.CosTheta.Hi > 1 {
		return fmt.Errorf("danton: sampler cos(theta) range invalid: [%g, %g]", s.CosTheta.Lo, s.CosTheta.Hi)
	}
	if s.Elevation.Lo < -90 || s.Elevation.Lo > s.Elevation.Hi || s.Elevation.Hi > 90 {
		return fmt.Errorf("danton: sampler elevation range invalid: [%g, %g]", s.Elevation.Lo, s.Elevation.Hi)
	}
	if s.Energy.Lo < 100 {
		return fmt.Errorf("danton: sampler energy[0] must be >= 100 GeV, got %g", s.Energy.Lo)
	}
	if s.Energy.Hi < 1e12 {
		return fmt.Errorf("danton: sampler energy[1] must be >= 1e12 GeV, got %g", s.Energy.Hi)
	}
	if s.Energy.Lo > s.Energy.Hi {
		return fmt.Errorf("danton: sampler energy range is inverted: [%g, %g]", s.Energy.Lo, s.Energy.Hi)
	}
	total := s.TotalWeight()
	if total <= 0 {
		return fmt.Errorf("danton: sampler species weights are all zero")
	}
	s.hash = s.computeHash()
	s.valid = true
	return nil
}

// NeutrinoWeight is the sum of the 6 neutrino-species weights.
func (s *Sampler) NeutrinoWeight() float64 {
	w := 0.0
	for i := SpeciesNuE; i <= SpeciesNuTauBar; i++ {
		w += s.SpeciesWeight[i]
	}
	return w
}

// TotalWeight is the sum of all 8 species weights.
func (s *Sampler) TotalWeight() float64 {
	w := 0.0
	for _, v := range s.SpeciesWeight {
		w += v
	}
	return w
}

// Hash returns the validation fingerprint computed at the last successful
// Validate call. It is the zero value until Validate succeeds.
func (s *Sampler) Hash() [32]byte { return s.hash }

// Stale reports whether s has not been validated, or whether its current
// field values hash differently than the value the caller previously
// recorded — i.e. the sampler was mutated since that hash was taken,
// validated or not (spec §3). It recomputes the hash from current state
// rather than trusting the cache from the last Validate call, so a
// mutation is visible immediately without requiring an explicit re-Validate.
func (s *Sampler) Stale(last [32]byte) bool {
	return !s.valid || s.computeHash() != last
}

func (s *Sampler) computeHash() [32]byte {
	var buf [8 * (2*4 + numSamplerSpecies)]byte
	off := 0
	putF := func(v float64) {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
		off += 8
	}
	putF(s.Altitude.Lo)
	putF(s.Altitude.Hi)
	putF(s.CosTheta.Lo)
	putF(s.CosTheta.Hi)
	putF(s.Elevation.Lo)
	putF(s.Elevation.Hi)
	putF(s.Energy.Lo)
	putF(s.Energy.Hi)
	for _, w := range s.SpeciesWeight {
		putF(w)
	}
	return sha256.Sum256(buf[:])
}

// Linear implements the sampler's `linear` primitive (spec §4.4): in
// grammage-scan mode this is a deterministic grid point; otherwise it is a
// uniform draw over the range using prng.
func Linear(rng Range, i, n int, grammageMode bool, prng *PRNG) float64 {
	if grammageMode {
		if n <= 1 {
			return rng.Lo
		}
		return rng.Lo + (rng.Hi-rng.Lo)*float64(i)/float64(n-1)
	}
	return rng.Lo + (rng.Hi-rng.Lo)*prng.Uniform01()
}

// LogOrLinear implements `log_or_linear` (spec §4.4): log-uniform sampling
// when the range does not straddle zero, linear otherwise. It returns the
// sampled value and the Jacobian weight factor to fold into the event
// weight.
func LogOrLinear(rng Range, prng *PRNG) (value, weight float64) {
	if rng.Lo > 0 || rng.Hi < 0 {
		r := math.Log(rng.Hi / rng.Lo)
		u := prng.Uniform01()
		value = rng.Lo * math.Exp(r*u)
		weight = r * rng.Hi * rng.Lo / ((rng.Hi - rng.Lo) * value)
		return value, weight
	}
	value = rng.Lo + (rng.Hi-rng.Lo)*prng.Uniform01()
	return value, 1
}
