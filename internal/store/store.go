// Package store archives completed simulation runs in SQLite so that long
// runs can be compared after the fact. It is optional; the simulator never
// depends on it.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cardsim/blackjack/internal/simulator"
)

// Run is one archived simulation run: the request summary plus the full
// result serialized as JSON.
type Run struct {
	ID           string            `json:"id"`
	StrategyName string            `json:"strategy_name"`
	BettingType  string            `json:"betting_type"`
	TotalHands   int               `json:"total_hands"`
	EVPerHand    float64           `json:"ev_per_hand"`
	Seed         int64             `json:"seed"`
	CreatedAt    time.Time         `json:"created_at"`
	Result       *simulator.Result `json:"result,omitempty"`
}

// Store wraps a SQLite database holding archived runs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		strategy_name TEXT NOT NULL,
		betting_type TEXT NOT NULL,
		total_hands INTEGER NOT NULL,
		ev_per_hand REAL NOT NULL,
		seed INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		result TEXT NOT NULL
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// SaveRun archives a completed run and returns its generated ID.
func (s *Store) SaveRun(strategyName, bettingType string, seed int64, res *simulator.Result) (string, error) {
	id := uuid.New().String()

	payload, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("serializing result: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, strategy_name, betting_type, total_hands, ev_per_hand, seed, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, strategyName, bettingType, res.TotalHands, res.EVPerHand(), seed, string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}
	return id, nil
}

// GetRun loads one archived run including its full result.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, strategy_name, betting_type, total_hands, ev_per_hand, seed, created_at, result
		 FROM runs WHERE id = ?`, id)

	var run Run
	var payload string
	if err := row.Scan(&run.ID, &run.StrategyName, &run.BettingType,
		&run.TotalHands, &run.EVPerHand, &run.Seed, &run.CreatedAt, &payload); err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	var res simulator.Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("parsing archived result for %s: %w", id, err)
	}
	run.Result = &res
	return &run, nil
}

// ListRuns returns run summaries (without full results), newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, strategy_name, betting_type, total_hands, ev_per_hand, seed, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StrategyName, &run.BettingType,
			&run.TotalHands, &run.EVPerHand, &run.Seed, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
