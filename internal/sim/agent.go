// Package sim provides the epidemic core: agents, the contact/transmission
// resolver, the intervention strategy, and the tick driver.
package sim

import (
	"fmt"

	"github.com/talgya/outbreak/internal/grid"
	"github.com/talgya/outbreak/internal/rng"
)

// Compartment is an agent's SIR state.
type Compartment uint8

const (
	Susceptible Compartment = iota
	Infected
	Recovered
)

// String returns the compartment name.
func (c Compartment) String() string {
	switch c {
	case Susceptible:
		return "susceptible"
	case Infected:
		return "infected"
	case Recovered:
		return "recovered"
	default:
		return fmt.Sprintf("compartment(%d)", uint8(c))
	}
}

// Agent is one individual on the grid. Agents never transition backwards:
// Susceptible→Infected and Infected→Recovered are the only moves, and an
// immune agent stays Susceptible forever.
type Agent struct {
	ID  grid.AgentID
	Pos grid.Position

	Compartment Compartment
	// OnsetTick is the tick the agent became infected. Only meaningful
	// once the agent has entered the Infected compartment.
	OnsetTick int
	// Immune marks an initially vaccinated agent. It exempts the agent
	// from exposure without changing its compartment.
	Immune bool

	// Each agent owns its random stream, keyed by (run seed, agent ID).
	// Every stochastic decision the agent makes draws from this stream,
	// so within-tick activation order cannot change any agent's draws.
	rng *rng.Stream
}

func newAgent(id grid.AgentID, seed uint64) *Agent {
	return &Agent{
		ID:  id,
		rng: rng.NewStream(seed, uint64(id)+1),
	}
}

// Quarantined reports whether the agent currently sits out movement and
// transmission. The flag is derived, not stored: an infected agent is
// quarantined exactly while the policy is enabled.
func (a *Agent) Quarantined(st Strategy) bool {
	return st.QuarantineEnabled && a.Compartment == Infected
}

// AttemptMove relocates the agent to a uniformly chosen neighboring cell.
// Quarantined agents never move; otherwise a Bernoulli trial at the
// distancing probability decides whether the agent stays put this tick.
func (a *Agent) AttemptMove(g *grid.Grid, st Strategy) {
	if a.Quarantined(st) {
		return
	}
	if a.rng.Bernoulli(st.DistancingProb) {
		return
	}
	candidates := g.Neighbors(a.Pos)
	if len(candidates) == 0 {
		return
	}
	next := candidates[a.rng.IntN(len(candidates))]
	if g.Move(a.ID, next) {
		a.Pos = next
	}
}

// AdvanceInfection transitions the agent to Recovered once the infection
// duration has elapsed. Deterministic; a no-op for non-infected agents.
func (a *Agent) AdvanceInfection(tick int, st Strategy) {
	if a.Compartment != Infected {
		return
	}
	if tick-a.OnsetTick >= st.InfectionDuration {
		a.Compartment = Recovered
	}
}

// Expose runs one transmission trial against the agent at probability p,
// infecting it on success. Calling Expose on a non-susceptible or immune
// agent is a driver protocol violation.
func (a *Agent) Expose(tick int, p float64) error {
	if a.Compartment != Susceptible {
		return fmt.Errorf("%w: expose on %s agent %d", ErrInvalidStateTransition, a.Compartment, a.ID)
	}
	if a.Immune {
		return fmt.Errorf("%w: expose on immune agent %d", ErrInvalidStateTransition, a.ID)
	}
	if a.rng.Bernoulli(p) {
		a.Compartment = Infected
		a.OnsetTick = tick
	}
	return nil
}
