package market

import "fmt"

// Supported agent kinds. The kind string is what ends up in records and
// in the distribution section of the config.
const (
	KindRandom        = "random"
	KindTrendFollower = "trend_follower"
	KindContrarian    = "contrarian"
	KindCustom        = "custom"
)

// Kinds lists the supported agent kinds in their canonical order, which
// is also the construction order BuildPopulation uses.
func Kinds() []string {
	return []string{KindRandom, KindTrendFollower, KindContrarian, KindCustom}
}

// NewStrategy dispatches a kind string to a fresh strategy instance.
// totalIterations is only consumed by the custom kind, which needs its
// turn budget up front.
func NewStrategy(kind string, totalIterations int) (Strategy, error) {
	switch kind {
	case KindRandom:
		return NewRandomWalk(), nil
	case KindTrendFollower:
		return NewTrendFollower(), nil
	case KindContrarian:
		return NewContrarian(), nil
	case KindCustom:
		return NewMeanReversion(totalIterations), nil
	default:
		return nil, fmt.Errorf("unknown agent kind: %q", kind)
	}
}

// NewAgentOfKind builds one agent with a freshly constructed strategy of
// the given kind. Strategies are never shared between agents: the custom
// kind carries per-agent history and a turn counter.
func NewAgentOfKind(kind string, capital float64, units, totalIterations int) (*Agent, error) {
	strategy, err := NewStrategy(kind, totalIterations)
	if err != nil {
		return nil, err
	}
	return NewAgent(kind, capital, units, strategy)
}

// BuildPopulation expands a {kind: count} distribution into agents, all
// starting from the same capital and units. Unknown kinds and negative
// counts fail before any agent is built. The returned order is canonical
// kind order; the market reshuffles it every iteration anyway.
func BuildPopulation(distribution map[string]int, capital float64, units, totalIterations int) ([]*Agent, error) {
	total := 0
	for kind, count := range distribution {
		if count < 0 {
			return nil, fmt.Errorf("agent count for %q cannot be negative: %d", kind, count)
		}
		valid := false
		for _, known := range Kinds() {
			if kind == known {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("unknown agent kind: %q", kind)
		}
		total += count
	}
	agents := make([]*Agent, 0, total)
	for _, kind := range Kinds() {
		for i := 0; i < distribution[kind]; i++ {
			agent, err := NewAgentOfKind(kind, capital, units, totalIterations)
			if err != nil {
				return nil, err
			}
			agents = append(agents, agent)
		}
	}
	return agents, nil
}
