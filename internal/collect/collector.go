// Package collect gathers per-tick compartment totals during a run.
package collect

import "github.com/talgya/outbreak/internal/sim"

// Sample is one recorded tick.
type Sample struct {
	Tick   int        `json:"tick"`
	Counts sim.Counts `json:"counts"`
}

// Memory is an append-only in-memory collector. It satisfies sim.Collector
// and is queried after the run for reporting and persistence.
type Memory struct {
	samples []Sample
}

// NewMemory creates an empty collector.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends the totals for one tick.
func (m *Memory) Record(tick int, c sim.Counts) {
	m.samples = append(m.samples, Sample{Tick: tick, Counts: c})
}

// Series returns every recorded sample in tick order.
func (m *Memory) Series() []Sample {
	return m.samples
}

// Last returns the most recent sample.
func (m *Memory) Last() (Sample, bool) {
	if len(m.samples) == 0 {
		return Sample{}, false
	}
	return m.samples[len(m.samples)-1], true
}

// PeakInfected returns the sample with the highest infected count. Ties go
// to the earlier tick.
func (m *Memory) PeakInfected() (Sample, bool) {
	if len(m.samples) == 0 {
		return Sample{}, false
	}
	peak := m.samples[0]
	for _, s := range m.samples[1:] {
		if s.Counts.Infected > peak.Counts.Infected {
			peak = s
		}
	}
	return peak, true
}
