package market

import "math/rand"

// Trend thresholds and weights shared by the two momentum strategies. A
// move smaller than trendThreshold counts as flat.
const (
	trendThreshold = 0.01
	trendBuyProb   = 0.75
	trendSellProb  = 0.20
)

// TrendFollower chases momentum: on a price rise of at least 1% since the
// previous turn (or on the very first sighting, treated as an upward
// signal) it buys with p=0.75; otherwise it sells with p=0.20. The
// previous price updates every turn regardless of the action taken.
type TrendFollower struct{}

func NewTrendFollower() *TrendFollower { return &TrendFollower{} }

func (*TrendFollower) Kind() string { return KindTrendFollower }

func (*TrendFollower) Decide(rng *rand.Rand, a *Agent, price float64, turn int) (Result, error) {
	change, known := priceChange(a, price)

	var action Action
	if !known || change >= trendThreshold {
		action = weighted(rng, ActionBuy, trendBuyProb)
	} else {
		action = weighted(rng, ActionSell, trendSellProb)
	}

	a.setPreviousPrice(price)
	return execute(a, action, price)
}

// Contrarian trades against the move: on a price drop of at least 1% (or
// with no prior price, treated as a dip worth entering) it buys with
// p=0.75; otherwise it sells with p=0.20. The weights mirror
// TrendFollower's; the original behaviour only pins down the action sets,
// so the mirrored pair is the documented choice here.
type Contrarian struct{}

func NewContrarian() *Contrarian { return &Contrarian{} }

func (*Contrarian) Kind() string { return KindContrarian }

func (*Contrarian) Decide(rng *rand.Rand, a *Agent, price float64, turn int) (Result, error) {
	change, known := priceChange(a, price)

	var action Action
	if !known || change <= -trendThreshold {
		action = weighted(rng, ActionBuy, trendBuyProb)
	} else {
		action = weighted(rng, ActionSell, trendSellProb)
	}

	a.setPreviousPrice(price)
	return execute(a, action, price)
}

// priceChange reports the relative change since the agent's recorded
// previous price, and false when no previous price exists yet.
func priceChange(a *Agent, price float64) (float64, bool) {
	prev, ok := a.PreviousPrice()
	if !ok || prev == 0 {
		return 0, false
	}
	return (price - prev) / prev, true
}

// weighted returns action with probability p and ActionNothing otherwise.
func weighted(rng *rand.Rand, action Action, p float64) Action {
	if rng.Float64() < p {
		return action
	}
	return ActionNothing
}
