package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/leadgram/leadgram/internal/entity"
)

type ScheduledMessageRepository struct {
	DB *sql.DB
}

func NewScheduledMessageRepository(db *sql.DB) *ScheduledMessageRepository {
	return &ScheduledMessageRepository{DB: db}
}

const scheduledMessageColumns = `
	id, bot_id, channel_id, message, scheduled_time, repeat_type,
	repeat_days, COALESCE(repeat_time, ''), status, attempts, last_sent,
	COALESCE(parse_mode, ''), COALESCE(disable_web_page_preview, FALSE),
	COALESCE(disable_notification, FALSE), created_at, updated_at
`

func (r *ScheduledMessageRepository) Create(ctx context.Context, msg *entity.ScheduledMessage) error {
	query := `
		INSERT INTO scheduled_messages (
			id, bot_id, channel_id, message, scheduled_time, repeat_type,
			repeat_days, repeat_time, status, attempts, parse_mode,
			disable_web_page_preview, disable_notification, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12, NOW(), NOW())
	`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		msg.ID,
		msg.BotID,
		msg.ChannelID,
		msg.Message,
		msg.ScheduledTime,
		msg.RepeatType,
		pq.Array(daysToInt64(msg.RepeatDays)),
		nullString(msg.RepeatTime),
		msg.Status,
		nullString(msg.ParseMode),
		msg.DisableWebPagePreview,
		msg.DisableNotification,
	)
	if err != nil {
		return fmt.Errorf("insert scheduled message: %w", err)
	}

	return nil
}

func (r *ScheduledMessageRepository) FindByID(ctx context.Context, id string) (*entity.ScheduledMessage, error) {
	query := `SELECT ` + scheduledMessageColumns + ` FROM scheduled_messages WHERE id = $1`

	msg, err := scanScheduledMessage(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("scheduled message %s not found: %w", id, err)
	}

	return msg, nil
}

func (r *ScheduledMessageRepository) List(ctx context.Context, filters entity.ScheduledMessageFilters) ([]*entity.ScheduledMessage, error) {
	query := `SELECT ` + scheduledMessageColumns + `
		FROM scheduled_messages
		WHERE ($1 = '' OR bot_id = $1)
		  AND ($2 = '' OR channel_id = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY scheduled_time ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, filters.BotID, filters.ChannelID, filters.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectScheduledMessages(rows)
}

// FindDue also resurrects rows stranded in processing by a crash between
// claim and mark: after the lease expires they become claimable again.
func (r *ScheduledMessageRepository) FindDue(ctx context.Context, now time.Time) ([]*entity.ScheduledMessage, error) {
	query := `SELECT ` + scheduledMessageColumns + `
		FROM scheduled_messages
		WHERE scheduled_time <= $2
		  AND (status = $1
		       OR (status = $3 AND updated_at <= NOW() - INTERVAL '10 minutes'))
		ORDER BY scheduled_time ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, entity.MessageStatusPending, now, entity.MessageStatusProcessing)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectScheduledMessages(rows)
}

// Claim is the compare-and-set that keeps two overlapping ticks from both
// dispatching the same row: only one UPDATE matches pending + the last_sent
// value the tick read.
func (r *ScheduledMessageRepository) Claim(ctx context.Context, id string, lastSent *time.Time) (bool, error) {
	query := `
		UPDATE scheduled_messages
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		  AND (status = $3
		       OR (status = $1 AND updated_at <= NOW() - INTERVAL '10 minutes'))
		  AND last_sent IS NOT DISTINCT FROM $4
	`

	result, err := r.DB.ExecContext(ctx, query, entity.MessageStatusProcessing, id, entity.MessageStatusPending, lastSent)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (r *ScheduledMessageRepository) MarkSent(ctx context.Context, id, status string, sentAt time.Time) error {
	query := `
		UPDATE scheduled_messages
		SET status = $1, last_sent = $2, attempts = 0, updated_at = NOW()
		WHERE id = $3
	`

	_, err := r.DB.ExecContext(ctx, query, status, sentAt, id)
	return err
}

func (r *ScheduledMessageRepository) MarkFailed(ctx context.Context, id string, attempts int, permanent bool) error {
	status := entity.MessageStatusPending
	if permanent {
		status = entity.MessageStatusFailed
	}

	query := `
		UPDATE scheduled_messages
		SET status = $1, attempts = $2, updated_at = NOW()
		WHERE id = $3
	`

	_, err := r.DB.ExecContext(ctx, query, status, attempts, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScheduledMessage(row rowScanner) (*entity.ScheduledMessage, error) {
	var msg entity.ScheduledMessage
	var days pq.Int64Array
	var lastSent sql.NullTime

	err := row.Scan(
		&msg.ID,
		&msg.BotID,
		&msg.ChannelID,
		&msg.Message,
		&msg.ScheduledTime,
		&msg.RepeatType,
		&days,
		&msg.RepeatTime,
		&msg.Status,
		&msg.Attempts,
		&lastSent,
		&msg.ParseMode,
		&msg.DisableWebPagePreview,
		&msg.DisableNotification,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, day := range days {
		msg.RepeatDays = append(msg.RepeatDays, int(day))
	}
	if lastSent.Valid {
		msg.LastSent = &lastSent.Time
	}

	return &msg, nil
}

func collectScheduledMessages(rows *sql.Rows) ([]*entity.ScheduledMessage, error) {
	var messages []*entity.ScheduledMessage

	for rows.Next() {
		msg, err := scanScheduledMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func daysToInt64(days []int) []int64 {
	out := make([]int64, 0, len(days))
	for _, day := range days {
		out = append(out, int64(day))
	}
	return out
}
