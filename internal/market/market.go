package market

import (
	"fmt"
	"math/rand"
	"time"
)

// Price/stock update applied after every successful trade.
const (
	buyPriceFactor  = 1.005
	sellPriceFactor = 0.995
)

// AgentRecord is one agent's turn as seen right after the market applied
// its effect: the agent's balances plus the resulting shared state.
type AgentRecord struct {
	Kind    string  `json:"kind"`
	Capital float64 `json:"capital"`
	Units   int     `json:"units"`
	Action  Action  `json:"action"`
	Success bool    `json:"success"`
	Stock   int     `json:"stock"`
	Price   float64 `json:"price"`
}

// Recorder receives each finalized iteration in order. Implementations
// decide where the records go (log, store, nothing); the market only
// guarantees iteration order and turn order within an iteration.
type Recorder interface {
	RecordIteration(iteration int, records []AgentRecord)
}

// Config wires a Market. Rand and Recorder are optional: a nil Rand gets
// a time-seeded source, a nil Recorder means records accumulate only in
// the in-memory history.
type Config struct {
	InitialPrice float64
	Iterations   int
	InitialStock int
	Agents       []*Agent
	Rand         *rand.Rand
	Recorder     Recorder
}

// Market owns the shared price and stock and drives the iteration loop.
// Execution is strictly sequential: one agent acts at a time and the
// price/stock update lands before the next agent looks at the market.
type Market struct {
	price      float64
	stock      int
	iterations int
	agents     []*Agent
	rng        *rand.Rand
	recorder   Recorder
	history    [][]AgentRecord
}

// New validates the construction parameters; any violation is fatal and
// nothing runs.
func New(cfg Config) (*Market, error) {
	if cfg.InitialPrice < 0 {
		return nil, fmt.Errorf("initial price cannot be negative: %v", cfg.InitialPrice)
	}
	if cfg.Iterations < 0 {
		return nil, fmt.Errorf("iterations cannot be negative: %d", cfg.Iterations)
	}
	if cfg.InitialStock < 0 {
		return nil, fmt.Errorf("stock cannot be negative: %d", cfg.InitialStock)
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Market{
		price:      cfg.InitialPrice,
		stock:      cfg.InitialStock,
		iterations: cfg.Iterations,
		agents:     cfg.Agents,
		rng:        rng,
		recorder:   cfg.Recorder,
	}, nil
}

func (m *Market) Price() float64 { return m.price }

func (m *Market) Stock() int { return m.stock }

func (m *Market) Iterations() int { return m.iterations }

func (m *Market) Agents() []*Agent { return m.agents }

// History returns the per-iteration records accumulated so far.
func (m *Market) History() [][]AgentRecord { return m.history }

// Simulate runs the configured number of iterations. Each iteration
// shuffles the turn order, runs every agent once, applies the update rule
// after each individual turn, and hands the finalized iteration to the
// recorder. The first error from any turn aborts the run.
func (m *Market) Simulate() error {
	for iteration := 0; iteration < m.iterations; iteration++ {
		m.rng.Shuffle(len(m.agents), func(i, j int) {
			m.agents[i], m.agents[j] = m.agents[j], m.agents[i]
		})
		records := make([]AgentRecord, 0, len(m.agents))
		for _, agent := range m.agents {
			res, err := agent.Run(m.rng, m.price, iteration, m.stock)
			if err != nil {
				return fmt.Errorf("iteration %d, agent %s: %w", iteration, agent.Kind(), err)
			}
			m.updatePriceAndStock(res)
			records = append(records, AgentRecord{
				Kind:    agent.Kind(),
				Capital: agent.Capital(),
				Units:   agent.Units(),
				Action:  res.Action,
				Success: res.Success,
				Stock:   m.stock,
				Price:   m.price,
			})
		}
		m.history = append(m.history, records)
		if m.recorder != nil {
			m.recorder.RecordIteration(iteration, records)
		}
	}
	return nil
}

// updatePriceAndStock applies the shared-state effect of one turn. Only a
// successful trade moves the market; a successful buy can take stock to
// exactly zero, which blocks further buys until someone sells.
func (m *Market) updatePriceAndStock(res Result) {
	switch {
	case res.Action == ActionBuy && res.Success:
		m.price *= buyPriceFactor
		m.stock--
	case res.Action == ActionSell && res.Success:
		m.price *= sellPriceFactor
		m.stock++
	}
}
