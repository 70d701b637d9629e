package market

import (
	"math/rand"
)

// Action is what an agent chose to do with its turn.
type Action string

const (
	ActionBuy     Action = "buy"
	ActionSell    Action = "sell"
	ActionNothing Action = "do_nothing"
)

// Result pairs the chosen action with whether it went through. A
// do_nothing turn is trivially successful.
type Result struct {
	Action  Action `json:"action"`
	Success bool   `json:"success"`
}

// Strategy decides one turn for one agent. Implementations may keep
// per-agent bookkeeping (previous price, price history) but the only way
// they touch capital or units is through the agent's Buy/Sell primitives.
// The rng comes from the market so that a seeded run replays exactly.
type Strategy interface {
	Kind() string
	Decide(rng *rand.Rand, a *Agent, price float64, turn int) (Result, error)
}

// execute turns a chosen action into a Result by invoking the matching
// agent primitive. Primitive errors (non-positive price) propagate and
// abort the run.
func execute(a *Agent, action Action, price float64) (Result, error) {
	res := Result{Action: action, Success: true}
	switch action {
	case ActionBuy:
		ok, err := a.Buy(price)
		if err != nil {
			return Result{}, err
		}
		res.Success = ok
	case ActionSell:
		ok, err := a.Sell(price)
		if err != nil {
			return Result{}, err
		}
		res.Success = ok
	}
	return res, nil
}
