package market

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrNonPositivePrice rejects buy/sell calls with a price <= 0 before
	// any state changes.
	ErrNonPositivePrice = errors.New("trade price must be positive")
	// ErrNoStrategy means an agent reached the turn loop without a bound
	// strategy. Correct assembly through the factory makes this unreachable.
	ErrNoStrategy = errors.New("agent has no strategy bound")
)

// Agent holds capital and GPU units and delegates its per-turn decision to
// the strategy bound at construction. Capital and units never go negative;
// the primitives check before they mutate.
type Agent struct {
	kind     string
	capital  float64
	units    int
	strategy Strategy

	// previousPrice is bookkeeping for trend-sensitive strategies; unset
	// until the first decision that records it.
	previousPrice    float64
	hasPreviousPrice bool

	// visibleStock is the market stock as of the start of this agent's
	// current turn, set by Run. Buy eligibility reads this value and never
	// re-queries the market.
	visibleStock int
}

// NewAgent validates the initial balances and binds the strategy. The
// strategy may be nil only for partially-assembled test fixtures; Run
// fails with ErrNoStrategy in that case.
func NewAgent(kind string, capital float64, units int, strategy Strategy) (*Agent, error) {
	if capital < 0 {
		return nil, fmt.Errorf("agent capital cannot be negative: %v", capital)
	}
	if units < 0 {
		return nil, fmt.Errorf("agent units cannot be negative: %d", units)
	}
	return &Agent{
		kind:     kind,
		capital:  capital,
		units:    units,
		strategy: strategy,
	}, nil
}

func (a *Agent) Kind() string { return a.kind }

func (a *Agent) Capital() float64 { return a.capital }

func (a *Agent) Units() int { return a.units }

// PreviousPrice returns the last price recorded by a trend-sensitive
// strategy and whether one has been recorded yet.
func (a *Agent) PreviousPrice() (float64, bool) {
	return a.previousPrice, a.hasPreviousPrice
}

func (a *Agent) setPreviousPrice(price float64) {
	a.previousPrice = price
	a.hasPreviousPrice = true
}

// Buy attempts to purchase one unit at price. It succeeds iff the agent
// can afford it and the stock visible at the start of the turn is
// positive; otherwise nothing changes and it reports false.
func (a *Agent) Buy(price float64) (bool, error) {
	if price <= 0 {
		return false, ErrNonPositivePrice
	}
	if a.capital >= price && a.visibleStock > 0 {
		a.capital -= price
		a.units++
		return true, nil
	}
	return false, nil
}

// Sell attempts to sell one unit at price. It succeeds iff the agent owns
// at least one unit; otherwise nothing changes and it reports false.
func (a *Agent) Sell(price float64) (bool, error) {
	if price <= 0 {
		return false, ErrNonPositivePrice
	}
	if a.units > 0 {
		a.capital += price
		a.units--
		return true, nil
	}
	return false, nil
}

// Run records the stock visible for this turn and delegates the decision
// to the bound strategy.
func (a *Agent) Run(rng *rand.Rand, price float64, turn, stock int) (Result, error) {
	a.visibleStock = stock
	if a.strategy == nil {
		return Result{}, ErrNoStrategy
	}
	return a.strategy.Decide(rng, a, price, turn)
}
