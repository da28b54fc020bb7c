package sim

import "fmt"

// Strategy enumerates the public-health interventions active for a run and
// their parameters. It is constructed once before the run and read-only
// thereafter. The zero interventions returned by DefaultStrategy reproduce
// the plain SIR model.
type Strategy struct {
	// VaccinationFraction is the share of the population made immune at
	// model initialization. Immune agents stay in the susceptible
	// compartment but can never be infected.
	VaccinationFraction float64 `json:"vaccination_fraction"`

	// DistancingProb is the per-tick probability that an agent skips its
	// move. 0 disables social distancing.
	DistancingProb float64 `json:"distancing_probability"`

	// QuarantineEnabled removes infected agents from movement and
	// transmission until they recover.
	QuarantineEnabled bool `json:"quarantine_enabled"`

	// BaseTransmission is the probability that a susceptible agent sharing
	// a cell with at least one infected agent becomes infected this tick.
	BaseTransmission float64 `json:"base_transmission"`

	// HygieneFactor scales BaseTransmission to model masking/hygiene.
	// 1 means no reduction.
	HygieneFactor float64 `json:"hygiene_factor"`

	// InfectionDuration is the number of ticks after onset at which an
	// infected agent recovers.
	InfectionDuration int `json:"infection_duration"`
}

// DefaultStrategy returns the no-intervention strategy with the classic
// model parameters (transmission 0.1, recovery after 15 ticks).
func DefaultStrategy() Strategy {
	return Strategy{
		BaseTransmission:  0.1,
		HygieneFactor:     1.0,
		InfectionDuration: 15,
	}
}

// Transmission returns the effective per-contact transmission probability
// with the hygiene reduction applied.
func (s Strategy) Transmission() float64 {
	return s.BaseTransmission * s.HygieneFactor
}

// Validate checks every parameter against its domain. All violations are
// reported as ErrInvalidConfiguration wrapped with the offending field.
func (s Strategy) Validate() error {
	if s.VaccinationFraction < 0 || s.VaccinationFraction > 1 {
		return fmt.Errorf("%w: vaccination_fraction %v outside [0,1]", ErrInvalidConfiguration, s.VaccinationFraction)
	}
	if s.DistancingProb < 0 || s.DistancingProb > 1 {
		return fmt.Errorf("%w: distancing_probability %v outside [0,1]", ErrInvalidConfiguration, s.DistancingProb)
	}
	if s.BaseTransmission < 0 || s.BaseTransmission > 1 {
		return fmt.Errorf("%w: base_transmission %v outside [0,1]", ErrInvalidConfiguration, s.BaseTransmission)
	}
	if s.HygieneFactor < 0 || s.HygieneFactor > 1 {
		return fmt.Errorf("%w: hygiene_factor %v outside [0,1]", ErrInvalidConfiguration, s.HygieneFactor)
	}
	if s.InfectionDuration <= 0 {
		return fmt.Errorf("%w: infection_duration %d must be positive", ErrInvalidConfiguration, s.InfectionDuration)
	}
	return nil
}
