package store

import (
	"time"

	"gorm.io/datatypes"
)

// Run statuses.
const (
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusFailed  = "failed"
)

// Run is one simulation from construction to its terminal state. Config
// holds the resolved simulation config for replay.
type Run struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Status       string         `gorm:"index" json:"status"`
	Message      string         `json:"message,omitempty"`
	InitialPrice float64        `json:"initial_price"`
	InitialStock int            `json:"initial_stock"`
	Iterations   int            `json:"iterations"`
	AgentCount   int            `json:"agent_count"`
	Seed         int64          `json:"seed"`
	FinalPrice   float64        `json:"final_price"`
	FinalStock   int            `json:"final_stock"`
	Config       datatypes.JSON `json:"config,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// TurnRecord is one agent's turn inside one iteration, stored in turn
// order (seq) so the intra-iteration effect chain can be replayed.
type TurnRecord struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"-"`
	RunID     string  `gorm:"index:idx_turn_run_iter" json:"run_id"`
	Iteration int     `gorm:"index:idx_turn_run_iter" json:"iteration"`
	Seq       int     `json:"seq"`
	AgentKind string  `json:"agent_kind"`
	Capital   float64 `json:"capital"`
	Units     int     `json:"units"`
	Action    string  `json:"action"`
	Success   bool    `json:"success"`
	Stock     int     `json:"stock"`
	Price     float64 `json:"price"`
}

// PricePoint is the market state at the end of one iteration.
type PricePoint struct {
	Iteration int     `json:"iteration"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
}
