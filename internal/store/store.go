package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gpusim/internal/market"
)

// ErrRunNotFound is returned by lookups for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Store persists runs and their per-turn records in SQLite via gorm.
type Store struct {
	db *gorm.DB
}

// Open creates (or opens) the results database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Run{}, &TurnRecord{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: keep contention low, allow concurrent HTTP reads.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RunParams is everything known about a run before its first iteration.
type RunParams struct {
	InitialPrice float64
	InitialStock int
	Iterations   int
	AgentCount   int
	Seed         int64
	Config       any
}

// CreateRun inserts a new run in the running state and returns it with a
// fresh id.
func (s *Store) CreateRun(ctx context.Context, params RunParams) (Run, error) {
	run := Run{
		ID:           uuid.NewString(),
		Status:       RunStatusRunning,
		InitialPrice: params.InitialPrice,
		InitialStock: params.InitialStock,
		Iterations:   params.Iterations,
		AgentCount:   params.AgentCount,
		Seed:         params.Seed,
	}
	if params.Config != nil {
		raw, err := json.Marshal(params.Config)
		if err != nil {
			return Run{}, fmt.Errorf("marshaling run config: %w", err)
		}
		run.Config = raw
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return Run{}, err
	}
	return run, nil
}

// AppendIteration stores one finalized iteration's records in turn order.
func (s *Store) AppendIteration(ctx context.Context, runID string, iteration int, records []market.AgentRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]TurnRecord, 0, len(records))
	for seq, rec := range records {
		rows = append(rows, TurnRecord{
			RunID:     runID,
			Iteration: iteration,
			Seq:       seq,
			AgentKind: rec.Kind,
			Capital:   rec.Capital,
			Units:     rec.Units,
			Action:    string(rec.Action),
			Success:   rec.Success,
			Stock:     rec.Stock,
			Price:     rec.Price,
		})
	}
	return s.db.WithContext(ctx).CreateInBatches(rows, 500).Error
}

// FinishRun moves a run to its terminal state and records the final
// market state.
func (s *Store) FinishRun(ctx context.Context, runID, status, message string, finalPrice float64, finalStock int) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&Run{}).Where("id = ?", runID).Updates(map[string]any{
		"status":       status,
		"message":      message,
		"final_price":  finalPrice,
		"final_stock":  finalStock,
		"completed_at": &now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun fetches one run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	var run Run
	err := s.db.WithContext(ctx).First(&run, "id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns runs newest first, capped at limit (<=0 means 50).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []Run
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// Records returns a run's turn records in iteration and turn order.
// iteration < 0 means all iterations.
func (s *Store) Records(ctx context.Context, runID string, iteration int) ([]TurnRecord, error) {
	q := s.db.WithContext(ctx).Where("run_id = ?", runID)
	if iteration >= 0 {
		q = q.Where("iteration = ?", iteration)
	}
	var rows []TurnRecord
	err := q.Order("iteration ASC, seq ASC").Find(&rows).Error
	return rows, err
}

// PriceSeries returns the end-of-iteration price and stock, one point per
// iteration in order.
func (s *Store) PriceSeries(ctx context.Context, runID string) ([]PricePoint, error) {
	var points []PricePoint
	err := s.db.WithContext(ctx).Raw(`
		SELECT t.iteration AS iteration, t.price AS price, t.stock AS stock
		FROM turn_records t
		WHERE t.run_id = ?
		  AND t.seq = (SELECT MAX(seq) FROM turn_records WHERE run_id = t.run_id AND iteration = t.iteration)
		ORDER BY t.iteration ASC`, runID).Scan(&points).Error
	return points, err
}
