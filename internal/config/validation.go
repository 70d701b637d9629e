package config

import "fmt"

// validate covers the structural constraints; unknown agent kinds are the
// factory's concern at assembly time.
func validate(c *Config) error {
	if err := c.Sim.validate(); err != nil {
		return err
	}
	return nil
}

func (s *SimConfig) validate() error {
	if s.InitialPrice < 0 {
		return fmt.Errorf("sim.initial_price must be >= 0, got %v", s.InitialPrice)
	}
	if s.Iterations < 0 {
		return fmt.Errorf("sim.iterations must be >= 0, got %d", s.Iterations)
	}
	if s.InitialStock < 0 {
		return fmt.Errorf("sim.initial_stock must be >= 0, got %d", s.InitialStock)
	}
	if s.Agents.Capital < 0 {
		return fmt.Errorf("sim.agents.capital must be >= 0, got %v", s.Agents.Capital)
	}
	if s.Agents.Units < 0 {
		return fmt.Errorf("sim.agents.units must be >= 0, got %d", s.Agents.Units)
	}
	for kind, count := range s.Agents.Distribution {
		if count < 0 {
			return fmt.Errorf("sim.agents.distribution.%s must be >= 0, got %d", kind, count)
		}
	}
	return nil
}
