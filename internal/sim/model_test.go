package sim

import (
	"errors"
	"reflect"
	"testing"
)

type sample struct {
	tick   int
	counts Counts
}

// memCollector is a minimal Collector for assertions.
type memCollector struct {
	samples []sample
}

func (m *memCollector) Record(tick int, c Counts) {
	m.samples = append(m.samples, sample{tick: tick, counts: c})
}

func baselineConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.MaxTicks = 50
	cfg.Strategy.BaseTransmission = 0.3
	cfg.Strategy.InfectionDuration = 5
	return cfg
}

func TestNewModelValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero population", func(c *Config) { c.Population = 0 }},
		{"negative width", func(c *Config) { c.Width = -1 }},
		{"zero height", func(c *Config) { c.Height = 0 }},
		{"zero max ticks", func(c *Config) { c.MaxTicks = 0 }},
		{"zero seeds", func(c *Config) { c.InitialInfected = 0 }},
		{"seeds above population", func(c *Config) { c.InitialInfected = c.Population + 1 }},
		{"bad strategy", func(c *Config) { c.Strategy.BaseTransmission = 2 }},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		_, err := NewModel(cfg, nil)
		if err == nil {
			t.Errorf("%s: expected construction failure", tc.name)
			continue
		}
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%s: error %v is not ErrInvalidConfiguration", tc.name, err)
		}
	}
}

func TestConservationAndMonotonicity(t *testing.T) {
	mem := &memCollector{}
	m, err := NewModel(baselineConfig(), mem)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}

	if len(mem.samples) == 0 {
		t.Fatal("no samples recorded")
	}
	first := mem.samples[0]
	if first.tick != 0 {
		t.Fatalf("first sample at tick %d, want 0", first.tick)
	}
	if first.counts.Infected != 1 {
		t.Fatalf("tick 0 infected = %d, want the single seed", first.counts.Infected)
	}

	prev := first.counts
	for _, s := range mem.samples {
		if s.counts.Total() != 100 {
			t.Fatalf("tick %d: S+I+R = %d, want 100", s.tick, s.counts.Total())
		}
		if s.counts.Recovered < prev.Recovered {
			t.Fatalf("tick %d: recovered count decreased", s.tick)
		}
		if s.counts.Susceptible > prev.Susceptible {
			t.Fatalf("tick %d: susceptible count increased", s.tick)
		}
		prev = s.counts
	}
}

func TestReproducibility(t *testing.T) {
	runOnce := func() []sample {
		mem := &memCollector{}
		m, err := NewModel(baselineConfig(), mem)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.Run(); err != nil {
			t.Fatal(err)
		}
		return mem.samples
	}

	if a, b := runOnce(), runOnce(); !reflect.DeepEqual(a, b) {
		t.Fatal("identical seed and config must produce identical per-tick series")
	}
}

func TestEpidemicBurnsOut(t *testing.T) {
	// With N agents each infectious for exactly D ticks, the epidemic
	// cannot outlive N×D ticks: max_ticks above that bound guarantees
	// termination on zero infections.
	cfg := DefaultConfig()
	cfg.Population = 50
	cfg.Width = 10
	cfg.Height = 10
	cfg.MaxTicks = 300
	cfg.Seed = 7
	cfg.Strategy.BaseTransmission = 0.5
	cfg.Strategy.InfectionDuration = 5

	m, err := NewModel(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}

	final := m.Counts()
	if final.Infected != 0 {
		t.Fatalf("infected = %d after burnout bound", final.Infected)
	}
	if final.Recovered < 1 {
		t.Fatal("the seeded agent must end up recovered")
	}
	if m.Tick() >= cfg.MaxTicks {
		t.Fatalf("epidemic ran the full %d ticks", cfg.MaxTicks)
	}
}

func TestImmuneNeverInfected(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		cfg := DefaultConfig()
		cfg.Population = 40
		cfg.Width = 5
		cfg.Height = 5
		cfg.Seed = seed
		cfg.Strategy.VaccinationFraction = 0.6
		cfg.Strategy.BaseTransmission = 1.0
		cfg.Strategy.InfectionDuration = 5

		m, err := NewModel(cfg, nil)
		if err != nil {
			t.Fatal(err)
		}

		immune := 0
		for _, a := range m.Agents() {
			if a.Immune {
				immune++
			}
		}
		if immune != 24 {
			t.Fatalf("seed %d: %d immune agents, want floor(40*0.6) = 24", seed, immune)
		}

		if err := m.Run(); err != nil {
			t.Fatal(err)
		}
		for _, a := range m.Agents() {
			if a.Immune && a.Compartment != Susceptible {
				t.Fatalf("seed %d: immune agent %d reached %v", seed, a.ID, a.Compartment)
			}
		}
	}
}

func TestFullVaccination(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 3
	cfg.Strategy.VaccinationFraction = 1.0
	cfg.Strategy.BaseTransmission = 1.0
	cfg.Strategy.InfectionDuration = 5

	mem := &memCollector{}
	m, err := NewModel(cfg, mem)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}

	// Everyone except the seed is immune: no exposure can ever succeed,
	// and the run ends when the seed recovers.
	if m.Tick() != 5 {
		t.Fatalf("run ended at tick %d, want 5", m.Tick())
	}
	for _, s := range mem.samples {
		if s.counts.Susceptible != 99 {
			t.Fatalf("tick %d: susceptible = %d, want 99", s.tick, s.counts.Susceptible)
		}
	}
	final := m.Counts()
	if final.Infected != 0 || final.Recovered != 1 {
		t.Fatalf("final counts = %+v, want I=0 R=1", final)
	}
}

func TestQuarantineStopsTransmission(t *testing.T) {
	base := DefaultConfig()
	base.Population = 10
	base.Width = 1
	base.Height = 1
	base.MaxTicks = 10
	base.Seed = 5
	base.Strategy.BaseTransmission = 1.0
	base.Strategy.InfectionDuration = 3

	// Quarantine on: the seed never transmits, even with everyone in the
	// same cell at certain transmission.
	cfg := base
	cfg.Strategy.QuarantineEnabled = true
	m, err := NewModel(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	final := m.Counts()
	if final.Susceptible != 9 || final.Recovered != 1 {
		t.Fatalf("quarantined run: final = %+v, want S=9 R=1", final)
	}
	if m.Tick() != 3 {
		t.Fatalf("quarantined run ended at tick %d, want 3", m.Tick())
	}

	// Quarantine off under the same seed: the whole cell is infected on
	// the first tick.
	mem := &memCollector{}
	m, err = NewModel(base, mem)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if mem.samples[1].counts.Infected != 10 {
		t.Fatalf("open run: tick 1 infected = %d, want 10", mem.samples[1].counts.Infected)
	}
	if final := m.Counts(); final.Recovered != 10 {
		t.Fatalf("open run: final recovered = %d, want 10", final.Recovered)
	}
}

func TestHygieneEliminatesTransmission(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Population = 10
	cfg.Width = 1
	cfg.Height = 1
	cfg.MaxTicks = 10
	cfg.Seed = 5
	cfg.Strategy.BaseTransmission = 1.0
	cfg.Strategy.HygieneFactor = 0
	cfg.Strategy.InfectionDuration = 3

	m, err := NewModel(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if final := m.Counts(); final.Susceptible != 9 {
		t.Fatalf("hygiene factor 0: final susceptible = %d, want 9", final.Susceptible)
	}
}

func TestStepAfterTermination(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 3
	cfg.Strategy.VaccinationFraction = 1.0
	cfg.Strategy.InfectionDuration = 2

	m, err := NewModel(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}

	tick, counts := m.Tick(), m.Counts()
	if err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if m.Tick() != tick || m.Counts() != counts {
		t.Fatal("stepping a terminated model must change nothing")
	}
}
