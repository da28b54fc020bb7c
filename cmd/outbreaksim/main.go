// Command outbreaksim runs a grid-based SIR epidemic simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/outbreak/internal/api"
	"github.com/talgya/outbreak/internal/collect"
	"github.com/talgya/outbreak/internal/grid"
	"github.com/talgya/outbreak/internal/persistence"
	"github.com/talgya/outbreak/internal/sim"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("outbreaksim", flag.ExitOnError)

	scenarioPath := fs.String("config", "", "JSON scenario file; when set, population/grid/strategy flags are ignored")
	population := fs.Int("n", 100, "population size")
	width := fs.Int("width", 20, "grid width")
	height := fs.Int("height", 20, "grid height")
	bounded := fs.Bool("bounded", false, "use a bounded grid instead of a torus")
	neighborhood := fs.String("neighborhood", "moore", "movement neighborhood: moore|von_neumann")
	maxTicks := fs.Int("ticks", 100, "maximum number of ticks")
	seed := fs.Uint64("seed", 42, "random seed")
	initialInfected := fs.Int("infected", 1, "number of seeded infections")

	vaccination := fs.Float64("vaccination", 0, "initially vaccinated fraction [0,1]")
	distancing := fs.Float64("distancing", 0, "probability of skipping a move [0,1]")
	quarantine := fs.Bool("quarantine", false, "quarantine infected agents")
	transmission := fs.Float64("transmission", 0.1, "base transmission probability [0,1]")
	hygiene := fs.Float64("hygiene", 1.0, "hygiene multiplier on transmission [0,1]")
	duration := fs.Int("duration", 15, "ticks until an infected agent recovers")

	dbPath := fs.String("db", "", "SQLite path to store the run (empty = no persistence)")
	apiPort := fs.Int("api", 0, "HTTP API port for paced runs (0 = disabled)")
	interval := fs.Duration("interval", 0, "wall-clock pace per tick (0 = run at full speed)")
	printSeries := fs.Bool("series", false, "print the full per-tick series")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// ── Configuration ────────────────────────────────────────────────
	var cfg sim.Config
	if *scenarioPath != "" {
		loaded, err := loadScenario(*scenarioPath)
		if err != nil {
			return err
		}
		cfg = loaded
		slog.Info("scenario loaded", "path", *scenarioPath)
	} else {
		nb, ok := grid.ParseNeighborhood(*neighborhood)
		if !ok {
			return fmt.Errorf("unknown neighborhood %q", *neighborhood)
		}
		cfg = sim.Config{
			Population:      *population,
			Width:           *width,
			Height:          *height,
			Toroidal:        !*bounded,
			Neighborhood:    nb,
			MaxTicks:        *maxTicks,
			InitialInfected: *initialInfected,
			Seed:            *seed,
			Strategy: sim.Strategy{
				VaccinationFraction: *vaccination,
				DistancingProb:      *distancing,
				QuarantineEnabled:   *quarantine,
				BaseTransmission:    *transmission,
				HygieneFactor:       *hygiene,
				InfectionDuration:   *duration,
			},
		}
	}

	mem := collect.NewMemory()
	model, err := sim.NewModel(cfg, mem)
	if err != nil {
		return err
	}

	slog.Info("model ready",
		"population", cfg.Population,
		"grid", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"toroidal", cfg.Toroidal,
		"neighborhood", cfg.Neighborhood,
		"seed", cfg.Seed,
		"transmission", cfg.Strategy.Transmission(),
		"vaccination", cfg.Strategy.VaccinationFraction,
		"distancing", cfg.Strategy.DistancingProb,
		"quarantine", cfg.Strategy.QuarantineEnabled,
	)

	// ── Run ───────────────────────────────────────────────────────────
	if *interval > 0 {
		if err := runPaced(model, mem, *interval, *apiPort); err != nil {
			return err
		}
	} else {
		if err := model.Run(); err != nil {
			return err
		}
	}

	// ── Report ────────────────────────────────────────────────────────
	final := model.Counts()
	peak, _ := mem.PeakInfected()
	fmt.Printf("\nEpidemic finished after %d ticks (population %s).\n",
		model.Tick(), humanize.Comma(int64(cfg.Population)))
	fmt.Printf("Peak: %s infected at tick %d. Final: %s susceptible, %s recovered.\n",
		humanize.Comma(int64(peak.Counts.Infected)), peak.Tick,
		humanize.Comma(int64(final.Susceptible)), humanize.Comma(int64(final.Recovered)))

	if *printSeries {
		fmt.Printf("\n%6s %12s %10s %10s\n", "tick", "susceptible", "infected", "recovered")
		for _, s := range mem.Series() {
			fmt.Printf("%6d %12d %10d %10d\n", s.Tick, s.Counts.Susceptible, s.Counts.Infected, s.Counts.Recovered)
		}
	}

	// ── Persist ───────────────────────────────────────────────────────
	if *dbPath != "" {
		db, err := persistence.Open(*dbPath)
		if err != nil {
			return fmt.Errorf("open results db: %w", err)
		}
		defer db.Close()

		runID, err := db.SaveRun(cfg, mem.Series())
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Printf("Run stored as %s in %s\n", runID, *dbPath)
	}

	return nil
}

// runPaced drives the model in wall-clock time, optionally serving the
// observation API, until the epidemic ends or a signal arrives.
func runPaced(model *sim.Model, mem *collect.Memory, interval time.Duration, apiPort int) error {
	runner := sim.NewRunner(model)
	runner.Interval = interval
	runner.OnTick = func(tick int, c sim.Counts) {
		slog.Info("tick report",
			"tick", tick,
			"susceptible", c.Susceptible,
			"infected", c.Infected,
			"recovered", c.Recovered,
		)
	}

	if apiPort > 0 {
		adminKey := os.Getenv("OUTBREAK_ADMIN_KEY")
		if adminKey == "" {
			slog.Warn("OUTBREAK_ADMIN_KEY not set — control POST endpoints will be disabled")
		}
		server := &api.Server{
			Model:    model,
			Runner:   runner,
			Mem:      mem,
			Port:     apiPort,
			AdminKey: adminKey,
		}
		server.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, stopping", "signal", sig)
		runner.Stop()
	}()

	return runner.Run()
}
