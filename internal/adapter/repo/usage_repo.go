package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"stratplan/internal/domain"
)

// UsageRepositoryPG implements domain.UsageRepository backed by PostgreSQL.
type UsageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUsageRepository creates a new UsageRepositoryPG.
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepositoryPG {
	return &UsageRepositoryPG{pool: pool}
}

// RecordEvent appends one usage event row.
func (r *UsageRepositoryPG) RecordEvent(ctx context.Context, event domain.UsageEvent) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO usage_events (id, user_id, event_type, success, latency_ms, country, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		uuid.NewString(), event.UserID, event.EventType, event.Success, event.LatencyMS, event.Country)
	return err
}
