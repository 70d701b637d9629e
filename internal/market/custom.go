package market

import "math/rand"

// Mean-reversion parameters. The history window is FIFO-bounded; the
// safety margin forces liquidation while enough turns remain to sell one
// unit per turn.
const (
	meanReversionWindow  = 10
	meanReversionBuyPct  = 0.10
	meanReversionSellPct = 0.05
	meanReversionMargin  = 1
)

// MeanReversion buys dips below the rolling average and sells spikes above
// it, and unwinds whatever position is left before its turn budget runs
// out. This is the "custom" agent kind.
type MeanReversion struct {
	totalTurns int
	turnsTaken int
	history    []float64
}

// NewMeanReversion builds the strategy with its fixed turn budget, which
// must match the simulation's iteration count for the liquidation override
// to fire at the right time.
func NewMeanReversion(totalTurns int) *MeanReversion {
	return &MeanReversion{
		totalTurns: totalTurns,
		history:    make([]float64, 0, meanReversionWindow),
	}
}

func (*MeanReversion) Kind() string { return KindCustom }

func (s *MeanReversion) Decide(rng *rand.Rand, a *Agent, price float64, turn int) (Result, error) {
	taken := s.turnsTaken
	s.turnsTaken++
	turnsLeft := s.totalTurns - taken

	s.history = append(s.history, price)
	if len(s.history) > meanReversionWindow {
		s.history = s.history[1:]
	}
	avg := mean(s.history)

	var action Action
	switch {
	case turnsLeft <= a.Units()+meanReversionMargin:
		// Liquidation override: too few turns left to unwind later.
		if a.Units() > 0 {
			action = ActionSell
		} else {
			action = ActionNothing
		}
	case price <= avg*(1-meanReversionBuyPct) && a.Capital() >= price:
		action = ActionBuy
	case price >= avg*(1+meanReversionSellPct) && a.Units() > 0:
		action = ActionSell
	default:
		action = ActionNothing
	}

	a.setPreviousPrice(price)
	return execute(a, action, price)
}

// History exposes the retained price window, oldest first.
func (s *MeanReversion) History() []float64 {
	out := make([]float64, len(s.history))
	copy(out, s.history)
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
