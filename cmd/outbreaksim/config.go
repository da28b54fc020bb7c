package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/talgya/outbreak/internal/sim"
)

// loadScenario reads a run configuration from a JSON file. Fields absent
// from the file keep their defaults, so a scenario only needs to name what
// it changes:
//
//	{
//	  "population": 200,
//	  "max_ticks": 150,
//	  "initial_infected": 10,
//	  "strategy": {
//	    "base_transmission": 0.25,
//	    "distancing_probability": 0.5,
//	    "quarantine_enabled": true,
//	    "vaccination_fraction": 0.3,
//	    "hygiene_factor": 1.0,
//	    "infection_duration": 15
//	  }
//	}
func loadScenario(path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return cfg, nil
}
