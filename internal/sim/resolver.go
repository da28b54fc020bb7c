package sim

// resolveCell applies transmission between the co-occupants of one cell.
//
// The occupant set is partitioned before any exposure: infected agents that
// are not quarantined on one side, exposable susceptibles on the other. An
// agent infected during this call never transmits in the same tick. When
// either side is empty the function returns without drawing randomness, so
// trial counts stay deterministic under a fixed seed.
//
// Each susceptible receives exactly one trial per tick per cell no matter how
// many infected agents share the cell: the trial models "at least one contact
// this tick", not one contact per infected neighbor. Per-pair trials would
// silently steepen the epidemic curve.
func resolveCell(occupants []*Agent, tick int, st Strategy) error {
	anyInfected := false
	for _, a := range occupants {
		if a.Compartment == Infected && !a.Quarantined(st) {
			anyInfected = true
			break
		}
	}
	if !anyInfected {
		return nil
	}

	exposed := make([]*Agent, 0, len(occupants))
	for _, a := range occupants {
		if a.Compartment == Susceptible && !a.Immune {
			exposed = append(exposed, a)
		}
	}

	p := st.Transmission()
	for _, a := range exposed {
		if err := a.Expose(tick, p); err != nil {
			return err
		}
	}
	return nil
}
