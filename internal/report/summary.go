package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gpusim/internal/logger"
	"gpusim/internal/market"
)

// KindSummary aggregates the final holdings of one agent kind.
type KindSummary struct {
	Kind         string          `json:"kind"`
	Agents       int             `json:"agents"`
	Units        int             `json:"units"`
	TotalCapital decimal.Decimal `json:"total_capital"`
	MeanCapital  decimal.Decimal `json:"mean_capital"`
}

// Summary is the end-of-run report: final market state plus per-kind
// aggregates in the canonical kind order.
type Summary struct {
	FinalPrice float64       `json:"final_price"`
	FinalStock int           `json:"final_stock"`
	Kinds      []KindSummary `json:"kinds"`
}

// Summarize aggregates the final state of a finished market. Capital sums
// go through decimals so the totals do not pick up float accumulation
// noise over large populations.
func Summarize(m *market.Market) Summary {
	byKind := make(map[string]*KindSummary)
	for _, agent := range m.Agents() {
		ks, ok := byKind[agent.Kind()]
		if !ok {
			ks = &KindSummary{Kind: agent.Kind()}
			byKind[agent.Kind()] = ks
		}
		ks.Agents++
		ks.Units += agent.Units()
		ks.TotalCapital = ks.TotalCapital.Add(decimal.NewFromFloat(agent.Capital()))
	}

	s := Summary{FinalPrice: m.Price(), FinalStock: m.Stock()}
	for _, kind := range market.Kinds() {
		ks, ok := byKind[kind]
		if !ok {
			continue
		}
		ks.TotalCapital = ks.TotalCapital.Round(2)
		ks.MeanCapital = ks.TotalCapital.Div(decimal.NewFromInt(int64(ks.Agents))).Round(2)
		s.Kinds = append(s.Kinds, *ks)
		delete(byKind, kind)
	}
	// Kinds outside the canonical set still get reported.
	for _, ks := range byKind {
		ks.TotalCapital = ks.TotalCapital.Round(2)
		ks.MeanCapital = ks.TotalCapital.Div(decimal.NewFromInt(int64(ks.Agents))).Round(2)
		s.Kinds = append(s.Kinds, *ks)
	}
	return s
}

// Format renders the summary the way the console report prints it.
func (s Summary) Format() string {
	var b strings.Builder
	b.WriteString("--- Simulation finished ---\n")
	fmt.Fprintf(&b, "Final GPU price: $%.2f\n", s.FinalPrice)
	fmt.Fprintf(&b, "Final GPU stock: %d\n", s.FinalStock)
	for _, ks := range s.Kinds {
		fmt.Fprintf(&b, "%-14s | agents: %3d | GPUs held: %5d | capital total: $%s | capital mean: $%s\n",
			ks.Kind, ks.Agents, ks.Units, ks.TotalCapital.StringFixed(2), ks.MeanCapital.StringFixed(2))
	}
	return b.String()
}

// Log writes the formatted summary through the process logger.
func (s Summary) Log() {
	logger.InfoBlock(s.Format())
}
