package market

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(t *testing.T, capital float64, units int, strategy Strategy) *Agent {
	t.Helper()
	agent, err := NewAgent("test", capital, units, strategy)
	require.NoError(t, err)
	return agent
}

func TestNewAgentValidation(t *testing.T) {
	_, err := NewAgent(KindRandom, -1, 0, NewRandomWalk())
	assert.ErrorContains(t, err, "capital cannot be negative")

	_, err = NewAgent(KindRandom, 0, -1, NewRandomWalk())
	assert.ErrorContains(t, err, "units cannot be negative")

	agent, err := NewAgent(KindRandom, 0, 0, NewRandomWalk())
	require.NoError(t, err)
	assert.Equal(t, 0.0, agent.Capital())
	assert.Equal(t, 0, agent.Units())
}

func TestBuySucceedsWithCapitalAndStock(t *testing.T) {
	agent := newTestAgent(t, 1000, 0, nil)
	agent.visibleStock = 10

	ok, err := agent.Buy(250)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 750.0, agent.Capital())
	assert.Equal(t, 1, agent.Units())
}

func TestBuyFailsWithoutCapital(t *testing.T) {
	agent := newTestAgent(t, 100, 0, nil)
	agent.visibleStock = 10

	ok, err := agent.Buy(250)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 100.0, agent.Capital())
	assert.Equal(t, 0, agent.Units())
}

func TestBuyFailsWithoutVisibleStock(t *testing.T) {
	agent := newTestAgent(t, 1000, 0, nil)
	agent.visibleStock = 0

	ok, err := agent.Buy(250)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1000.0, agent.Capital())
	assert.Equal(t, 0, agent.Units())
}

func TestBuyRejectsNonPositivePrice(t *testing.T) {
	agent := newTestAgent(t, 1000, 0, nil)
	agent.visibleStock = 10

	for _, price := range []float64{0, -5} {
		ok, err := agent.Buy(price)
		assert.ErrorIs(t, err, ErrNonPositivePrice)
		assert.False(t, ok)
	}
	assert.Equal(t, 1000.0, agent.Capital())
}

func TestSellSucceedsWithUnits(t *testing.T) {
	agent := newTestAgent(t, 100, 2, nil)

	ok, err := agent.Sell(50)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 150.0, agent.Capital())
	assert.Equal(t, 1, agent.Units())
}

func TestSellFailsWithoutUnits(t *testing.T) {
	agent := newTestAgent(t, 100, 0, nil)

	ok, err := agent.Sell(50)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 100.0, agent.Capital())
	assert.Equal(t, 0, agent.Units())
}

func TestSellRejectsNonPositivePrice(t *testing.T) {
	agent := newTestAgent(t, 100, 2, nil)

	ok, err := agent.Sell(0)
	assert.ErrorIs(t, err, ErrNonPositivePrice)
	assert.False(t, ok)
	assert.Equal(t, 2, agent.Units())
}

func TestRunWithoutStrategyFails(t *testing.T) {
	agent := newTestAgent(t, 100, 0, nil)
	rng := rand.New(rand.NewSource(1))

	_, err := agent.Run(rng, 100, 0, 10)
	assert.ErrorIs(t, err, ErrNoStrategy)
}

func TestRunRecordsVisibleStock(t *testing.T) {
	agent := newTestAgent(t, 1000, 0, NewRandomWalk())
	rng := rand.New(rand.NewSource(1))

	_, err := agent.Run(rng, 100, 0, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, agent.visibleStock)
}
