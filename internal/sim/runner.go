package sim

import (
	"log/slog"
	"time"
)

// Runner paces a model in wall-clock time so a run can be observed while it
// happens (progress logs, HTTP API). Batch runs use Model.Run directly.
type Runner struct {
	Model    *Model
	Speed    float64       // Multiplier: 1.0 = one tick per Interval, 0 = paused
	Interval time.Duration // Base tick interval
	Running  bool

	// OnTick fires after every completed tick.
	OnTick func(tick int, c Counts)
}

// NewRunner creates a paced runner with a one-second default interval.
func NewRunner(m *Model) *Runner {
	return &Runner{
		Model:    m,
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run drives the model until it terminates or Stop is called. Blocks.
func (r *Runner) Run() error {
	r.Running = true
	slog.Info("paced run started", "interval", r.Interval, "speed", r.Speed)

	for r.Running && !r.Model.Terminated() {
		if r.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		if err := r.Model.Step(); err != nil {
			r.Running = false
			return err
		}
		if r.OnTick != nil {
			r.OnTick(r.Model.Tick(), r.Model.Counts())
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(r.Interval) / r.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	r.Running = false
	slog.Info("paced run stopped", "tick", r.Model.Tick())
	return nil
}

// Stop halts the run loop after the current tick.
func (r *Runner) Stop() {
	r.Running = false
}
