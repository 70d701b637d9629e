package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpusim/internal/market"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecords() []market.AgentRecord {
	return []market.AgentRecord{
		{Kind: market.KindRandom, Capital: 900, Units: 1, Action: market.ActionBuy, Success: true, Stock: 99, Price: 100.5},
		{Kind: market.KindContrarian, Capital: 1100, Units: 0, Action: market.ActionSell, Success: true, Stock: 100, Price: 99.9975},
		{Kind: market.KindCustom, Capital: 1000, Units: 0, Action: market.ActionNothing, Success: true, Stock: 100, Price: 99.9975},
	}
}

func TestCreateAndFinishRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, RunParams{
		InitialPrice: 200,
		InitialStock: 1000,
		Iterations:   10,
		AgentCount:   3,
		Seed:         42,
		Config:       map[string]any{"iterations": 10},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	require.NoError(t, s.FinishRun(ctx, run.ID, RunStatusDone, "completed", 210.5, 990))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusDone, got.Status)
	assert.Equal(t, 210.5, got.FinalPrice)
	assert.Equal(t, 990, got.FinalStock)
	require.NotNil(t, got.CompletedAt)
	assert.JSONEq(t, `{"iterations": 10}`, string(got.Config))
}

func TestFinishUnknownRun(t *testing.T) {
	s := openTestStore(t)
	err := s.FinishRun(context.Background(), "missing", RunStatusDone, "", 0, 0)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestAppendAndQueryRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	run, err := s.CreateRun(ctx, RunParams{Iterations: 2, AgentCount: 3})
	require.NoError(t, err)

	require.NoError(t, s.AppendIteration(ctx, run.ID, 0, sampleRecords()))
	require.NoError(t, s.AppendIteration(ctx, run.ID, 1, sampleRecords()[:2]))

	all, err := s.Records(ctx, run.ID, -1)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, 0, all[0].Iteration)
	assert.Equal(t, 0, all[0].Seq)
	assert.Equal(t, string(market.ActionBuy), all[0].Action)
	assert.Equal(t, 1, all[4].Iteration)
	assert.Equal(t, 1, all[4].Seq)

	second, err := s.Records(ctx, run.ID, 1)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, market.KindContrarian, second[1].AgentKind)
}

func TestPriceSeriesTakesLastTurnPerIteration(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	run, err := s.CreateRun(ctx, RunParams{Iterations: 2})
	require.NoError(t, err)

	require.NoError(t, s.AppendIteration(ctx, run.ID, 0, sampleRecords()))
	require.NoError(t, s.AppendIteration(ctx, run.ID, 1, sampleRecords()[:1]))

	series, err := s.PriceSeries(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, PricePoint{Iteration: 0, Price: 99.9975, Stock: 100}, series[0])
	assert.Equal(t, PricePoint{Iteration: 1, Price: 100.5, Stock: 99}, series[1])
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	first, err := s.CreateRun(ctx, RunParams{})
	require.NoError(t, err)
	second, err := s.CreateRun(ctx, RunParams{})
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.ErrorContains(t, err, "store path cannot be empty")
}
