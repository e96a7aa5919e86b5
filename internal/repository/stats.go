package repository

import (
	"context"

	"handpic/internal/domain"
)

// StatsRepository maintains the single site-wide counters row.
type StatsRepository interface {
	Init(ctx context.Context) error
	Snapshot(ctx context.Context) (*domain.Stats, error)
	AddView(ctx context.Context) error
}
