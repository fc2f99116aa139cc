package persist

import (
	"context"
	"fmt"
	"time"
)

// RunRow is one finished session's telemetry.
type RunRow struct {
	ID         int64
	LevelName  string
	Seed       string
	Score      int64
	Ticks      int64
	ChunkLoads int64
	CreatedAt  time.Time
}

// RunRepo stores per-session run telemetry.
type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// SaveRun inserts a finished run and fills in its assigned ID.
func (r *RunRepo) SaveRun(ctx context.Context, row *RunRow) error {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO runs (level_name, seed, score, ticks, chunk_loads)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		row.LevelName, row.Seed, row.Score, row.Ticks, row.ChunkLoads,
	).Scan(&row.ID, &row.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// TopRuns returns the highest-scoring runs for a level, newest first among
// ties.
func (r *RunRepo) TopRuns(ctx context.Context, levelName string, limit int) ([]RunRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, level_name, seed, score, ticks, chunk_loads, created_at
		 FROM runs
		 WHERE level_name = $1
		 ORDER BY score DESC, created_at DESC
		 LIMIT $2`,
		levelName, limit)
	if err != nil {
		return nil, fmt.Errorf("query top runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(&row.ID, &row.LevelName, &row.Seed, &row.Score,
			&row.Ticks, &row.ChunkLoads, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}
