package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leadgram/leadgram/internal/entity"
)

type WelcomeQueueRepository struct {
	DB *sql.DB
}

func NewWelcomeQueueRepository(db *sql.DB) *WelcomeQueueRepository {
	return &WelcomeQueueRepository{DB: db}
}

func (r *WelcomeQueueRepository) Enqueue(ctx context.Context, entry *entity.WelcomeQueueEntry) error {
	query := `
		INSERT INTO welcome_queue (
			id, channel_id, chat_id, user_id, scheduled_time, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.ChannelID,
		entry.ChatID,
		entry.UserID,
		entry.ScheduledTime,
		entry.Status,
	)
	if err != nil {
		return fmt.Errorf("insert welcome queue entry: %w", err)
	}

	return nil
}

func (r *WelcomeQueueRepository) FindByID(ctx context.Context, id string) (*entity.WelcomeQueueEntry, error) {
	query := `
		SELECT id, channel_id, chat_id, user_id, scheduled_time, status,
		       created_at, updated_at
		FROM welcome_queue
		WHERE id = $1
	`

	var entry entity.WelcomeQueueEntry
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.ChannelID,
		&entry.ChatID,
		&entry.UserID,
		&entry.ScheduledTime,
		&entry.Status,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("welcome queue entry %s not found: %w", id, err)
	}

	return &entry, nil
}

func (r *WelcomeQueueRepository) Claim(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE welcome_queue
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.DB.ExecContext(ctx, query, entity.WelcomeStatusProcessing, id, entity.WelcomeStatusPending)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// ClaimDue picks up overdue pending entries in one round trip. Entries whose
// broker message was lost (or that outlived a restart) land here, as do rows
// stranded in processing past the lease by a crashed consumer.
func (r *WelcomeQueueRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.WelcomeQueueEntry, error) {
	query := `
		UPDATE welcome_queue
		SET status = $1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM welcome_queue
			WHERE scheduled_time <= $3
			  AND (status = $2
			       OR (status = $1 AND updated_at <= NOW() - INTERVAL '10 minutes'))
			ORDER BY scheduled_time ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, channel_id, chat_id, user_id, scheduled_time, status,
		          created_at, updated_at
	`

	rows, err := r.DB.QueryContext(ctx, query, entity.WelcomeStatusProcessing, entity.WelcomeStatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*entity.WelcomeQueueEntry
	for rows.Next() {
		var entry entity.WelcomeQueueEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ChannelID,
			&entry.ChatID,
			&entry.UserID,
			&entry.ScheduledTime,
			&entry.Status,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

func (r *WelcomeQueueRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE welcome_queue SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, status, id)
	return err
}
