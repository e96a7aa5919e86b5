package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"handpic/internal/domain"
	"handpic/internal/repository"
)

const createStatsTable = `
CREATE TABLE IF NOT EXISTS stats (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	total_views INTEGER NOT NULL DEFAULT 0,
	daily_active_users INTEGER NOT NULL DEFAULT 0,
	last_updated DATETIME NOT NULL
);
`

// StatsRepository keeps the single row of site-wide counters.
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStatsTable); err != nil {
		return fmt.Errorf("create stats table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO stats (id, total_views, daily_active_users, last_updated)
VALUES (1, 0, 0, ?)`,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("seed stats row: %w", err)
	}
	return nil
}

func (r *StatsRepository) Snapshot(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats
	if err := r.db.QueryRowContext(ctx, `
SELECT total_views, daily_active_users, last_updated
FROM stats
WHERE id = 1`,
	).Scan(&stats.TotalViews, &stats.DailyActiveUsers, &stats.LastUpdated); err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}
	return &stats, nil
}

func (r *StatsRepository) AddView(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE stats SET total_views = total_views + 1, last_updated = ? WHERE id = 1`,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}
