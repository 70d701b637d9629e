package report

import (
	"context"
	"fmt"
	"strings"

	"gpusim/internal/logger"
	"gpusim/internal/market"
	"gpusim/internal/store"
)

// LogRecorder mirrors every iteration to the log, one line per turn.
type LogRecorder struct{}

func (LogRecorder) RecordIteration(iteration int, records []market.AgentRecord) {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Iteration %d ---\n", iteration+1)
	for i, rec := range records {
		fmt.Fprintf(&b, "Interaction %d | Agent: %s, Capital: $%.2f, GPUs: %d, Action: %s, Success: %t | Current Stock: %d | Current Price: $%.2f\n",
			i+1, rec.Kind, rec.Capital, rec.Units, rec.Action, rec.Success, rec.Stock, rec.Price)
	}
	logger.InfoBlock(b.String())
}

// StoreRecorder persists each iteration to the results store. Persistence
// failures must not kill a running simulation, so they are logged and the
// first one is kept for the caller to inspect after the run.
type StoreRecorder struct {
	ctx      context.Context
	store    *store.Store
	runID    string
	firstErr error
}

func NewStoreRecorder(ctx context.Context, s *store.Store, runID string) *StoreRecorder {
	if ctx == nil {
		ctx = context.Background()
	}
	return &StoreRecorder{ctx: ctx, store: s, runID: runID}
}

func (r *StoreRecorder) RecordIteration(iteration int, records []market.AgentRecord) {
	if err := r.store.AppendIteration(r.ctx, r.runID, iteration, records); err != nil {
		logger.Warnf("run %s: persisting iteration %d failed: %v", r.runID, iteration, err)
		if r.firstErr == nil {
			r.firstErr = err
		}
	}
}

// Err returns the first persistence failure, if any.
func (r *StoreRecorder) Err() error { return r.firstErr }

// MultiRecorder fans one record stream out to several recorders in order.
type MultiRecorder []market.Recorder

func (m MultiRecorder) RecordIteration(iteration int, records []market.AgentRecord) {
	for _, rec := range m {
		rec.RecordIteration(iteration, records)
	}
}
