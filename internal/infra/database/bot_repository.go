package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leadgram/leadgram/internal/entity"
)

type BotRepository struct {
	DB *sql.DB
}

func NewBotRepository(db *sql.DB) *BotRepository {
	return &BotRepository{DB: db}
}

func (r *BotRepository) FindByID(ctx context.Context, id string) (*entity.Bot, error) {
	query := `
		SELECT id, name, username, token, status,
		       COALESCE(webhook_url, ''), COALESCE(webhook_status, ''),
		       webhook_last_updated, created_at, updated_at
		FROM bots
		WHERE id = $1
	`

	var bot entity.Bot
	var lastUpdated sql.NullTime

	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&bot.ID,
		&bot.Name,
		&bot.Username,
		&bot.Token,
		&bot.Status,
		&bot.WebhookURL,
		&bot.WebhookStatus,
		&lastUpdated,
		&bot.CreatedAt,
		&bot.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("bot %s not found: %w", id, err)
	}

	if lastUpdated.Valid {
		bot.WebhookLastUpdated = &lastUpdated.Time
	}

	return &bot, nil
}

func (r *BotRepository) UpdateWebhook(ctx context.Context, id, url, status string) error {
	query := `
		UPDATE bots
		SET webhook_url = $1,
		    webhook_status = $2,
		    webhook_last_updated = NOW(),
		    updated_at = NOW()
		WHERE id = $3
	`

	_, err := r.DB.ExecContext(ctx, query, url, status, id)
	return err
}
