package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// activityRepository implements the ActivityRepository interface using PostgreSQL.
type activityRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewActivityRepository creates a new PostgreSQL-backed activity repository.
func NewActivityRepository(pool *pgxpool.Pool, logger zerolog.Logger) ActivityRepository {
	return &activityRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "activity").Logger(),
	}
}

// Insert stores one activity log entry.
func (r *activityRepository) Insert(ctx context.Context, entry *model.ActivityLog) error {
	var details []byte
	if entry.Details != nil {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal activity details: %w", err)
		}
	}

	query := `
		INSERT INTO activity_logs (id, user_id, username, action, entity_type, entity_id,
			details, ip_address, user_agent, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.UserID, entry.Username, entry.Action, entry.EntityType,
		entry.EntityID, details, nullIfEmpty(entry.IPAddress), nullIfEmpty(entry.UserAgent),
		entry.Timestamp,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("action", entry.Action).Msg("failed to insert activity log")
		return fmt.Errorf("failed to insert activity log: %w", err)
	}

	return nil
}

// List retrieves entries newest first with pagination.
func (r *activityRepository) List(ctx context.Context, limit, offset int) ([]model.ActivityLog, error) {
	query := `
		SELECT id, user_id, username, action, entity_type, entity_id, details,
			COALESCE(ip_address, ''), COALESCE(user_agent, ''), timestamp
		FROM activity_logs
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query activity logs")
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	var entries []model.ActivityLog
	for rows.Next() {
		var entry model.ActivityLog
		var details []byte
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Username, &entry.Action,
			&entry.EntityType, &entry.EntityID, &details, &entry.IPAddress,
			&entry.UserAgent, &entry.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal activity details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity logs: %w", err)
	}

	if entries == nil {
		entries = []model.ActivityLog{}
	}

	return entries, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
