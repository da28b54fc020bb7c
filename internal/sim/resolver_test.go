package sim

import (
	"testing"

	"github.com/talgya/outbreak/internal/grid"
	"github.com/talgya/outbreak/internal/rng"
)

func testStrategy(p float64) Strategy {
	st := DefaultStrategy()
	st.BaseTransmission = p
	return st
}

func TestResolveCellNoInfectedShortCircuits(t *testing.T) {
	const seed = 11
	susceptible := newAgent(0, seed)
	recovered := newAgent(1, seed)
	recovered.Compartment = Recovered

	if err := resolveCell([]*Agent{susceptible, recovered}, 1, testStrategy(0.5)); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if susceptible.Compartment != Susceptible {
		t.Fatal("no infected occupant, yet an infection occurred")
	}

	// The susceptible agent's stream must be untouched: no trials are
	// drawn when either subset of the cell is empty.
	fresh := rng.NewStream(seed, 1)
	if got, want := susceptible.rng.Float64(), fresh.Float64(); got != want {
		t.Fatalf("short-circuit consumed randomness: next draw %v, want %v", got, want)
	}
}

func TestResolveCellQuarantinedExcluded(t *testing.T) {
	st := testStrategy(1.0)
	st.QuarantineEnabled = true

	infected := newAgent(0, 11)
	infected.Compartment = Infected
	susceptible := newAgent(1, 11)

	if err := resolveCell([]*Agent{infected, susceptible}, 1, st); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if susceptible.Compartment != Susceptible {
		t.Fatal("quarantined infected agent transmitted")
	}
}

func TestResolveCellImmuneNotExposed(t *testing.T) {
	infected := newAgent(0, 11)
	infected.Compartment = Infected
	immune := newAgent(1, 11)
	immune.Immune = true

	if err := resolveCell([]*Agent{infected, immune}, 1, testStrategy(1.0)); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if immune.Compartment != Susceptible {
		t.Fatal("immune agent was infected")
	}
}

func TestResolveCellSingleTrialPerSusceptible(t *testing.T) {
	// Three infected co-occupants must not multiply the trial: the
	// susceptible agent draws exactly once per tick per cell.
	const seed = 23
	susceptible := newAgent(0, seed)
	occupants := []*Agent{susceptible}
	for i := 1; i <= 3; i++ {
		inf := newAgent(grid.AgentID(i), seed)
		inf.Compartment = Infected
		occupants = append(occupants, inf)
	}

	if err := resolveCell(occupants, 1, testStrategy(0.5)); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	// Skip exactly one draw on a fresh copy of the stream; the next
	// values must line up.
	fresh := rng.NewStream(seed, 1)
	fresh.Float64()
	if got, want := susceptible.rng.Float64(), fresh.Float64(); got != want {
		t.Fatalf("susceptible drew more than one trial: next draw %v, want %v", got, want)
	}
}

func TestResolveCellOrderIndependent(t *testing.T) {
	build := func() []*Agent {
		agents := make([]*Agent, 6)
		for i := range agents {
			agents[i] = newAgent(grid.AgentID(i), 77)
		}
		agents[0].Compartment = Infected
		agents[1].Compartment = Recovered
		agents[5].Immune = true
		return agents
	}

	first := build()
	if err := resolveCell(first, 4, testStrategy(0.5)); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	second := build()
	reversed := make([]*Agent, len(second))
	for i, a := range second {
		reversed[len(second)-1-i] = a
	}
	if err := resolveCell(reversed, 4, testStrategy(0.5)); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	for i := range first {
		if first[i].Compartment != second[i].Compartment {
			t.Fatalf("agent %d: %v with one ordering, %v with the other",
				i, first[i].Compartment, second[i].Compartment)
		}
	}
}
