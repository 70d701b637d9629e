package market

import "math/rand"

// RandomWalk picks buy, sell, or do_nothing with equal probability and
// keeps no memory between turns.
type RandomWalk struct{}

func NewRandomWalk() *RandomWalk { return &RandomWalk{} }

func (*RandomWalk) Kind() string { return KindRandom }

func (*RandomWalk) Decide(rng *rand.Rand, a *Agent, price float64, turn int) (Result, error) {
	actions := [...]Action{ActionBuy, ActionSell, ActionNothing}
	return execute(a, actions[rng.Intn(len(actions))], price)
}
