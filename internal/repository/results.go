package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/duelforge/duel-server-go/internal/game"
	"github.com/jackc/pgx/v5"
)

// MemoryResults keeps finished match summaries in process memory.
type MemoryResults struct {
	mu      sync.RWMutex
	results map[string]game.MatchResult
}

// NewMemoryResults creates an empty in-memory store.
func NewMemoryResults() *MemoryResults {
	return &MemoryResults{results: make(map[string]game.MatchResult)}
}

// RecordResult implements game.ResultRecorder. A second result for the same
// match is ignored.
func (r *MemoryResults) RecordResult(_ context.Context, result game.MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.results[result.MatchID]; !exists {
		r.results[result.MatchID] = result
	}
	return nil
}

// Get returns the result of one match.
func (r *MemoryResults) Get(_ context.Context, matchID string) (game.MatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[matchID]
	if !ok {
		return game.MatchResult{}, fmt.Errorf("%w: %s", game.ErrMatchNotFound, matchID)
	}
	return result, nil
}

// Recent returns up to limit results, most recently finished first.
func (r *MemoryResults) Recent(_ context.Context, limit int) ([]game.MatchResult, error) {
	r.mu.RLock()
	out := make([]game.MatchResult, 0, len(r.results))
	for _, result := range r.results {
		out = append(out, result)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PostgresResults stores finished match summaries in Postgres.
type PostgresResults struct {
	db *DB
}

// NewPostgresResults creates a Postgres-backed store.
func NewPostgresResults(db *DB) *PostgresResults {
	return &PostgresResults{db: db}
}

// RecordResult implements game.ResultRecorder.
func (r *PostgresResults) RecordResult(ctx context.Context, result game.MatchResult) error {
	humanStats, err := json.Marshal(result.HumanStats)
	if err != nil {
		return fmt.Errorf("failed to encode human stats: %w", err)
	}
	opponentStats, err := json.Marshal(result.OpponentStats)
	if err != nil {
		return fmt.Errorf("failed to encode opponent stats: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO match_results (
			match_id, seed, outcome, turn, human_hp, opponent_hp,
			human_stats, opponent_stats, event_count, checksum, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (match_id) DO NOTHING`,
		result.MatchID, result.Seed, string(result.Outcome), result.Turn, result.HumanHP, result.OpponentHP,
		string(humanStats), string(opponentStats), result.EventCount, result.Checksum, result.StartedAt, result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %w", err)
	}
	return nil
}

const selectResult = `
	SELECT match_id, seed, outcome, turn, human_hp, opponent_hp,
		human_stats, opponent_stats, event_count, checksum, started_at, finished_at
	FROM match_results`

// Get returns the result of one match.
func (r *PostgresResults) Get(ctx context.Context, matchID string) (game.MatchResult, error) {
	row := r.db.Pool.QueryRow(ctx, selectResult+` WHERE match_id = $1`, matchID)
	result, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.MatchResult{}, fmt.Errorf("%w: %s", game.ErrMatchNotFound, matchID)
	}
	if err != nil {
		return game.MatchResult{}, fmt.Errorf("failed to get match result: %w", err)
	}
	return result, nil
}

// Recent returns up to limit results, most recently finished first.
func (r *PostgresResults) Recent(ctx context.Context, limit int) ([]game.MatchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, selectResult+` ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %w", err)
	}
	defer rows.Close()

	var out []game.MatchResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		out = append(out, result)
	}
	return out, rows.Err()
}

func scanResult(row pgx.Row) (game.MatchResult, error) {
	var (
		result        game.MatchResult
		outcome       string
		humanStats    []byte
		opponentStats []byte
	)
	if err := row.Scan(
		&result.MatchID, &result.Seed, &outcome, &result.Turn, &result.HumanHP, &result.OpponentHP,
		&humanStats, &opponentStats, &result.EventCount, &result.Checksum, &result.StartedAt, &result.FinishedAt,
	); err != nil {
		return game.MatchResult{}, err
	}
	result.Outcome = game.Outcome(outcome)
	if err := json.Unmarshal(humanStats, &result.HumanStats); err != nil {
		return game.MatchResult{}, err
	}
	if err := json.Unmarshal(opponentStats, &result.OpponentStats); err != nil {
		return game.MatchResult{}, err
	}
	return result, nil
}

var (
	_ game.ResultRecorder = (*MemoryResults)(nil)
	_ game.ResultRecorder = (*PostgresResults)(nil)
)
