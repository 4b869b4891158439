package danton

import (
	"fmt"
	"io"
)

// Record is the tagged-union event record emitted by the run controller
// (spec §3, §4.8). Each concrete type formats itself with a fixed-field
// width mirroring danton.c's `format_*`/`fprintf` pairing (lines 506-549).
type Record interface {
	Format(w io.Writer) error
}

// AncestorRecord is emitted at most once per event (danton.c's
// `format_ancester`). In forward mode it precedes the event's first other
// record. In backward mode it is emitted at the end of the chain, after the
// event's tau pairs, and only for an accepted primary; tau pairs of an event
// whose primary is rejected are emitted with no ancestor.
type AncestorRecord struct {
	EventID  int64
	Species  Species
	Energy   float64
	Position [3]float64
	Weight   float64
}

func (r AncestorRecord) Format(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%10d %4d %12.5E %12.5E %12.5E %12.5E %12.5E\n",
		r.EventID, int(r.Species), r.Energy,
		r.Position[0], r.Position[1], r.Position[2], r.Weight)
	return err
}

// TauPairRecord describes a tau at its production and decay vertices
// (danton.c's `format_tau`).
type TauPairRecord struct {
	Generation int
	Species    Species
	Production State
	Decay      State
}

func (r TauPairRecord) Format(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%4d %4d %12.5E %12.5E %12.5E %12.5E %12.5E %12.5E\n",
		r.Generation, int(r.Species),
		r.Production.Energy, r.Production.Grammage,
		r.Decay.Energy, r.Decay.Grammage,
		r.Decay.Weight, r.Decay.Distance)
	return err
}

// NeutrinoRecord logs a neutrino that exited the simulation domain or made a
// counted crossing of the virtual detection surface; the forward driver
// emits it in flux-neutrino mode only.
type NeutrinoRecord struct {
	Species Species
	State   State
}

func (r NeutrinoRecord) Format(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%4d %12.5E %12.5E %12.5E\n",
		int(r.Species), r.State.Energy, r.State.Grammage, r.State.Weight)
	return err
}

// DecayProductRecord is one visible (non-neutrino, non-muon) decay product,
// logged only when the decay happened in the atmosphere (danton.c's
// `format_decay_product`, medium_index >= 10 guard).
type DecayProductRecord struct {
	Species  Species
	Momentum [3]float64
}

func (r DecayProductRecord) Format(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%4d %12.5E %12.5E %12.5E\n",
		int(r.Species), r.Momentum[0], r.Momentum[1], r.Momentum[2])
	return err
}

// GrammageRecord is one row of a grammage scan: cos(theta) vs. accumulated
// column depth (danton.c's `print_header_grammage`/scan loop).
type GrammageRecord struct {
	CosTheta float64
	Grammage float64
}

func (r GrammageRecord) Format(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%12.5E %12.5E\n", r.CosTheta, r.Grammage)
	return err
}
