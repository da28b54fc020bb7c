package sim

import (
	"fmt"
	"log/slog"

	"github.com/talgya/outbreak/internal/grid"
	"github.com/talgya/outbreak/internal/rng"
)

// Config describes one simulation run: the population, the grid, the run
// length, and the intervention strategy.
type Config struct {
	Population      int               `json:"population"`
	Width           int               `json:"width"`
	Height          int               `json:"height"`
	Toroidal        bool              `json:"toroidal"`
	Neighborhood    grid.Neighborhood `json:"neighborhood"`
	MaxTicks        int               `json:"max_ticks"`
	InitialInfected int               `json:"initial_infected"`
	Seed            uint64            `json:"seed"`
	Strategy        Strategy          `json:"strategy"`
}

// DefaultConfig returns the classic setup: 100 agents on a 20×20 torus with
// Moore movement, one seeded infection, no interventions.
func DefaultConfig() Config {
	return Config{
		Population:      100,
		Width:           20,
		Height:          20,
		Toroidal:        true,
		Neighborhood:    grid.Moore,
		MaxTicks:        100,
		InitialInfected: 1,
		Seed:            42,
		Strategy:        DefaultStrategy(),
	}
}

// Validate checks the run parameters. Strategy violations are included.
func (c Config) Validate() error {
	if c.Population <= 0 {
		return fmt.Errorf("%w: population %d must be positive", ErrInvalidConfiguration, c.Population)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d must have positive dimensions", ErrInvalidConfiguration, c.Width, c.Height)
	}
	if c.MaxTicks <= 0 {
		return fmt.Errorf("%w: max_ticks %d must be positive", ErrInvalidConfiguration, c.MaxTicks)
	}
	if c.InitialInfected < 1 || c.InitialInfected > c.Population {
		return fmt.Errorf("%w: initial_infected %d outside [1,%d]", ErrInvalidConfiguration, c.InitialInfected, c.Population)
	}
	return c.Strategy.Validate()
}

// Counts holds the compartment totals for one tick. Immune agents count as
// susceptible; their compartment never changes.
type Counts struct {
	Susceptible int `json:"susceptible"`
	Infected    int `json:"infected"`
	Recovered   int `json:"recovered"`
}

// Total returns the population accounted for by the tally.
func (c Counts) Total() int {
	return c.Susceptible + c.Infected + c.Recovered
}

// Collector receives the compartment totals after every tick, plus the
// initial totals at tick 0. Implementations are append-only.
type Collector interface {
	Record(tick int, c Counts)
}

// Model drives the population through ticks: move, resolve contacts,
// advance infections, tally. Single-threaded; every phase observes the
// state left behind by the previous one.
type Model struct {
	cfg    Config
	grid   *grid.Grid
	agents []*Agent

	master    *rng.Stream
	order     []int
	collector Collector

	tick       int
	counts     Counts
	terminated bool
}

// NewModel validates cfg, builds the population, applies vaccination, seeds
// the initial infections, and places every agent uniformly at random.
// The collector may be nil.
func NewModel(cfg Config, collector Collector) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		cfg:       cfg,
		grid:      grid.New(cfg.Width, cfg.Height, cfg.Toroidal, cfg.Neighborhood),
		agents:    make([]*Agent, cfg.Population),
		master:    rng.NewStream(cfg.Seed, 0),
		order:     make([]int, cfg.Population),
		collector: collector,
	}

	for i := range m.agents {
		m.agents[i] = newAgent(grid.AgentID(i), cfg.Seed)
		m.order[i] = i
	}

	// Vaccination selects floor(N × fraction) distinct agents, capped so
	// the infection seeds always find non-immune hosts. One permutation
	// serves both selections without replacement.
	immune := int(float64(cfg.Population) * cfg.Strategy.VaccinationFraction)
	if limit := cfg.Population - cfg.InitialInfected; immune > limit {
		immune = limit
	}
	perm := make([]int, cfg.Population)
	for i := range perm {
		perm[i] = i
	}
	m.master.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	for _, i := range perm[:immune] {
		m.agents[i].Immune = true
	}
	for _, i := range perm[immune : immune+cfg.InitialInfected] {
		m.agents[i].Compartment = Infected
		m.agents[i].OnsetTick = 0
	}

	for _, a := range m.agents {
		pos := grid.Position{X: m.master.IntN(cfg.Width), Y: m.master.IntN(cfg.Height)}
		m.grid.Place(a.ID, pos)
		a.Pos = pos
	}

	m.tally()
	m.record()
	return m, nil
}

// Step advances the simulation by one tick: all moves first, then contact
// resolution over the settled occupancy, then recovery checks, then the
// tally. A no-op once the model has terminated.
func (m *Model) Step() error {
	if m.terminated {
		return nil
	}
	m.tick++

	// Activation order is reshuffled every tick.
	m.master.Shuffle(len(m.order), func(i, j int) { m.order[i], m.order[j] = m.order[j], m.order[i] })

	for _, i := range m.order {
		m.agents[i].AttemptMove(m.grid, m.cfg.Strategy)
	}

	var resolveErr error
	m.grid.ForEachOccupied(func(_ grid.Position, occupants []grid.AgentID) {
		if resolveErr != nil || len(occupants) < 2 {
			return
		}
		cell := make([]*Agent, len(occupants))
		for i, id := range occupants {
			cell[i] = m.agents[int(id)]
		}
		resolveErr = resolveCell(cell, m.tick, m.cfg.Strategy)
	})
	if resolveErr != nil {
		return fmt.Errorf("tick %d: %w", m.tick, resolveErr)
	}

	for _, a := range m.agents {
		a.AdvanceInfection(m.tick, m.cfg.Strategy)
	}

	m.tally()
	m.record()

	if m.tick >= m.cfg.MaxTicks || m.counts.Infected == 0 {
		m.terminated = true
	}
	return nil
}

// Run steps the model until it terminates, either at max_ticks or when no
// infected agents remain. Stopping early changes nothing: with zero infected
// every further tick would record the same totals.
func (m *Model) Run() error {
	for !m.terminated {
		if err := m.Step(); err != nil {
			return err
		}
	}
	slog.Info("run complete",
		"ticks", m.tick,
		"susceptible", m.counts.Susceptible,
		"infected", m.counts.Infected,
		"recovered", m.counts.Recovered,
	)
	return nil
}

// Tick returns the most recently completed tick.
func (m *Model) Tick() int { return m.tick }

// Counts returns the compartment totals after the last tick.
func (m *Model) Counts() Counts { return m.counts }

// Terminated reports whether the run has ended.
func (m *Model) Terminated() bool { return m.terminated }

// Config returns the run configuration.
func (m *Model) Config() Config { return m.cfg }

// Agents exposes the population for inspection.
func (m *Model) Agents() []*Agent { return m.agents }

func (m *Model) tally() {
	var c Counts
	for _, a := range m.agents {
		switch a.Compartment {
		case Susceptible:
			c.Susceptible++
		case Infected:
			c.Infected++
		case Recovered:
			c.Recovered++
		}
	}
	m.counts = c
}

func (m *Model) record() {
	if m.collector != nil {
		m.collector.Record(m.tick, m.counts)
	}
}
