package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leadgram/leadgram/internal/entity"
)

type ChannelRepository struct {
	DB *sql.DB
}

func NewChannelRepository(db *sql.DB) *ChannelRepository {
	return &ChannelRepository{DB: db}
}

const channelColumns = `
	id, COALESCE(bot_id, ''), name, username, COALESCE(telegram_id, ''),
	COALESCE(member_count, 0), COALESCE(welcome_enabled, FALSE),
	COALESCE(welcome_message, ''), COALESCE(tracking_enabled, FALSE),
	created_at, updated_at
`

func (r *ChannelRepository) FindByID(ctx context.Context, id string) (*entity.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE id = $1`

	channel, err := r.scanChannel(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("channel %s not found: %w", id, err)
	}

	return channel, nil
}

func (r *ChannelRepository) FindByTelegramID(ctx context.Context, telegramID string) (*entity.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE telegram_id = $1`

	channel, err := r.scanChannel(r.DB.QueryRowContext(ctx, query, telegramID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return channel, nil
}

func (r *ChannelRepository) UpdateMemberCount(ctx context.Context, id string, count int) error {
	query := `UPDATE channels SET member_count = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, count, id)
	return err
}

func (r *ChannelRepository) GetSetting(ctx context.Context, channelID, key string) (string, error) {
	query := `
		SELECT COALESCE(setting_value, '')
		FROM channel_settings
		WHERE channel_id = $1 AND setting_key = $2
	`

	var value string
	err := r.DB.QueryRowContext(ctx, query, channelID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return value, nil
}

func (r *ChannelRepository) scanChannel(row *sql.Row) (*entity.Channel, error) {
	var c entity.Channel

	err := row.Scan(
		&c.ID,
		&c.BotID,
		&c.Name,
		&c.Username,
		&c.TelegramID,
		&c.MemberCount,
		&c.WelcomeEnabled,
		&c.WelcomeMessage,
		&c.TrackingEnabled,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}
