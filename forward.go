package danton

// forwardRun carries the per-event bookkeeping the recursive forward driver
// needs across calls (danton.c's `transport()` static locals, made explicit
// instead of file-scope state).
type forwardRun struct {
	ctx           *Context
	eventID       int64
	done          int
	primaryDumped bool
	ancestor      AncestorRecord
	sink          func(Record)
}

// RunForward drives the forward Monte-Carlo (C6): a neutrino primary is
// transported until it exits, decays via an intermediate tau, or falls
// below the energy cut. Grounded on danton.c's `transport()` recursive
// control flow (species guard, tau swap-transport-decay, 20-retry decay
// sampling, ν_τ/ν̄_e daughter recursion, atmosphere-only product logging),
// generalized per spec §4.6 to flux-neutrino virtual-surface exit events.
func (c *Context) RunForward(eventID int64, primary *State, sink func(Record)) error {
	if err := c.checkSamplerFresh(); err != nil {
		return err
	}
	run := &forwardRun{
		ctx:     c,
		eventID: eventID,
		ancestor: AncestorRecord{
			EventID: eventID, Species: primary.Species, Energy: primary.Energy,
			Position: [3]float64{primary.Position.X, primary.Position.Y, primary.Position.Z},
			Weight:   primary.Weight,
		},
		sink: sink,
	}
	run.transport(primary, 0)
	return nil
}

func (run *forwardRun) dumpAncestorOnce() {
	if !run.primaryDumped {
		run.sink(run.ancestor)
		run.primaryDumped = true
	}
}

// emitFluxNeutrino logs a neutrino that left the simulation (or the
// detection surface, on a counted crossing) when flux-neutrino mode is on
// (spec §4.6 step 3, §4.8 scenario E4); a no-op otherwise.
func (run *forwardRun) emitFluxNeutrino(neutrino *State) {
	if !run.ctx.FluxNeutrino {
		return
	}
	run.dumpAncestorOnce()
	run.sink(NeutrinoRecord{Species: neutrino.Species, State: *neutrino})
}

func (run *forwardRun) transport(neutrino *State, generation int) {
	if !neutrino.Species.IsNeutrino() {
		return
	}
	if run.ctx.TausRequested > 0 && run.done >= run.ctx.TausRequested {
		return
	}

	for {
		product, event := run.ctx.Neutrino.Transport(run.ctx.RNG, run.ctx.Medium, neutrino, false, nil)

		switch event {
		case NeutrinoCrossed:
			// spec §4.6 step 3: a crossing only terminates the event on the
			// second (and further) occurrence; the first resets the
			// is_inside tri-state and the ray resumes.
			neutrino.Side.CrossCount++
			if neutrino.Side.CrossCount < 2 {
				neutrino.Side.Crossing = CrossingDisabled
				continue
			}
			run.emitFluxNeutrino(neutrino)
			return
		case NeutrinoExited:
			run.emitFluxNeutrino(neutrino)
			return
		}

		if neutrino.Energy <= run.ctx.EnergyCut {
			return
		}
		if event != NeutrinoInteracted {
			if !neutrino.Species.IsNeutrino() {
				return
			}
			continue
		}

		if product.Species.IsTau() {
			run.transportTau(neutrino, &product, generation)
		}
		if !neutrino.Species.IsNeutrino() {
			return
		}
	}
}

func (run *forwardRun) transportTau(neutrino, tau *State, generation int) {
	production := tau.Clone()
	reason := run.ctx.Lepton.Transport(run.ctx.RNG, run.ctx.Medium, tau, true, 0)
	if reason != LeptonDecayed {
		return
	}

	var products []State
	ok := false
	for trials := 0; trials < 20; trials++ {
		if products, ok = run.ctx.Decay.Decay(run.ctx.RNG, tau); ok {
			break
		}
	}
	if !ok {
		return
	}

	nprod := 0
	var nuE, nuTau *State
	for i := range products {
		p := &products[i]
		switch {
		case p.Species == NuTau || p.Species == NuTauBar:
			if neutrino.Species == Hadron {
				*neutrino = *p
			} else {
				cp := *p
				nuTau = &cp
			}
			continue
		case p.Species == NuEBar:
			cp := *p
			nuE = &cp
			continue
		case p.Species.IsNeutrino() && p.Species != NuTau && p.Species != NuTauBar:
			continue
		case p.Species == Muon || p.Species == MuonBar:
			continue
		}

		res := run.ctx.Medium.Step(tau.Position, tau.Direction, &tau.Side, true)
		if res.Shell < AtmosphereBase {
			continue
		}
		if nprod == 0 {
			run.dumpAncestorOnce()
			run.sink(TauPairRecord{Generation: generation, Species: tau.Species, Production: production, Decay: *tau})
		}
		run.sink(DecayProductRecord{Species: p.Species, Momentum: [3]float64{
			p.Direction.X * p.Energy, p.Direction.Y * p.Energy, p.Direction.Z * p.Energy,
		}})
		nprod++
	}
	if nprod > 0 {
		run.done++
	}
	if run.ctx.TausRequested > 0 && run.done >= run.ctx.TausRequested {
		return
	}
	generation++

	if nuE != nil {
		run.transport(nuE, generation)
	}
	if nuTau != nil {
		run.transport(nuTau, generation)
	}
}
