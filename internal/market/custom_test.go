package market

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedHistory feeds the strategy n turns at a flat price so the rolling
// window fills without triggering a trade.
func seedHistory(t *testing.T, s *MeanReversion, agent *Agent, price float64, n int) {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		res, err := s.Decide(rng, agent, price, i)
		require.NoError(t, err)
		require.Equal(t, ActionNothing, res.Action)
	}
}

func TestMeanReversionBuysDeepDip(t *testing.T) {
	agent := newTestAgent(t, 1000, 0, nil)
	agent.visibleStock = 100
	s := NewMeanReversion(100)
	seedHistory(t, s, agent, 100, 10)

	// 80 is 20% under the rolling mean; well past the 10% buy threshold.
	res, err := s.Decide(rand.New(rand.NewSource(1)), agent, 80, 10)
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, res.Action)
	assert.True(t, res.Success)
	assert.Equal(t, 920.0, agent.Capital())
	assert.Equal(t, 1, agent.Units())
}

func TestMeanReversionBuyNeedsCapital(t *testing.T) {
	agent := newTestAgent(t, 50, 0, nil)
	agent.visibleStock = 100
	s := NewMeanReversion(100)
	seedHistory(t, s, agent, 100, 10)

	// Dip qualifies but capital 50 < price 80: the capital guard keeps the
	// decision at do_nothing rather than producing a failed buy.
	res, err := s.Decide(rand.New(rand.NewSource(1)), agent, 80, 10)
	require.NoError(t, err)
	assert.Equal(t, ActionNothing, res.Action)
	assert.True(t, res.Success)
}

func TestMeanReversionSellsSpike(t *testing.T) {
	agent := newTestAgent(t, 1000, 1, nil)
	s := NewMeanReversion(100)
	seedHistory(t, s, agent, 100, 10)

	// 110 against a mean of 101 clears the 5% sell threshold.
	res, err := s.Decide(rand.New(rand.NewSource(1)), agent, 110, 10)
	require.NoError(t, err)
	assert.Equal(t, ActionSell, res.Action)
	assert.True(t, res.Success)
	assert.Equal(t, 1110.0, agent.Capital())
	assert.Equal(t, 0, agent.Units())
}

func TestMeanReversionLiquidationOverride(t *testing.T) {
	// 6 turns left, 5 units held, margin 1: must sell regardless of the
	// price sitting exactly on the mean.
	agent := newTestAgent(t, 1000, 5, nil)
	s := NewMeanReversion(6)

	res, err := s.Decide(rand.New(rand.NewSource(1)), agent, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, ActionSell, res.Action)
	assert.True(t, res.Success)
	assert.Equal(t, 4, agent.Units())
}

func TestMeanReversionLiquidationWithoutUnits(t *testing.T) {
	agent := newTestAgent(t, 1000, 0, nil)
	s := NewMeanReversion(1)

	res, err := s.Decide(rand.New(rand.NewSource(1)), agent, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, ActionNothing, res.Action)
	assert.True(t, res.Success)
}

func TestMeanReversionUnwindsBeforeBudgetExpires(t *testing.T) {
	// Once 100-turn budget minus turns taken drops to units+margin, every
	// remaining turn is a forced sell until the position is flat.
	agent := newTestAgent(t, 1000, 5, nil)
	s := NewMeanReversion(100)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 94; i++ {
		res, err := s.Decide(rng, agent, 100, i)
		require.NoError(t, err)
		require.Equal(t, ActionNothing, res.Action)
	}
	require.Equal(t, 5, agent.Units())

	for turn := 94; turn < 99; turn++ {
		res, err := s.Decide(rng, agent, 100, turn)
		require.NoError(t, err)
		assert.Equal(t, ActionSell, res.Action)
	}
	assert.Equal(t, 0, agent.Units())

	res, err := s.Decide(rng, agent, 100, 99)
	require.NoError(t, err)
	assert.Equal(t, ActionNothing, res.Action)
}

func TestMeanReversionHistoryWindowIsFIFO(t *testing.T) {
	agent := newTestAgent(t, 0, 0, nil)
	s := NewMeanReversion(1000)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 15; i++ {
		_, err := s.Decide(rng, agent, float64(100+i), i)
		require.NoError(t, err)
	}

	history := s.History()
	require.Len(t, history, 10)
	assert.Equal(t, 105.0, history[0])
	assert.Equal(t, 114.0, history[9])
}

func TestMeanReversionUpdatesPreviousPrice(t *testing.T) {
	agent := newTestAgent(t, 1000, 0, nil)
	s := NewMeanReversion(100)

	_, err := s.Decide(rand.New(rand.NewSource(1)), agent, 123, 0)
	require.NoError(t, err)
	prev, ok := agent.PreviousPrice()
	assert.True(t, ok)
	assert.Equal(t, 123.0, prev)
}
