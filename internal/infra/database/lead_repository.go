package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leadgram/leadgram/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, COALESCE(email, ''), COALESCE(telegram_id, ''),
	COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(username, ''),
	COALESCE(source, ''), COALESCE(channel_id, ''), COALESCE(status, ''),
	joined_at, created_at, last_active
`

func (r *LeadRepository) FindByTelegramID(ctx context.Context, telegramID string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE telegram_id = $1`
	return r.findOne(ctx, query, telegramID)
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE email = $1`
	return r.findOne(ctx, query, email)
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, email, telegram_id, first_name, last_name, username,
			source, channel_id, status, joined_at, created_at, last_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, last_active
	`

	return r.DB.QueryRowContext(
		ctx,
		query,
		lead.ID,
		nullString(lead.Email),
		nullString(lead.TelegramID),
		nullString(lead.FirstName),
		nullString(lead.LastName),
		nullString(lead.Username),
		nullString(lead.Source),
		nullString(lead.ChannelID),
		lead.Status,
		lead.JoinedAt,
	).Scan(&lead.CreatedAt, &lead.LastActive)
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads
		SET channel_id = COALESCE($1, channel_id),
		    first_name = COALESCE($2, first_name),
		    last_name  = COALESCE($3, last_name),
		    username   = COALESCE($4, username),
		    status     = $5,
		    joined_at  = COALESCE($6, joined_at),
		    last_active = NOW()
		WHERE id = $7
		RETURNING last_active
	`

	return r.DB.QueryRowContext(
		ctx,
		query,
		nullString(lead.ChannelID),
		nullString(lead.FirstName),
		nullString(lead.LastName),
		nullString(lead.Username),
		lead.Status,
		lead.JoinedAt,
		lead.ID,
	).Scan(&lead.LastActive)
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE leads SET status = $1, last_active = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, status, id)
	return err
}

func (r *LeadRepository) findOne(ctx context.Context, query string, arg string) (*entity.Lead, error) {
	var lead entity.Lead
	var joinedAt sql.NullTime

	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&lead.ID,
		&lead.Email,
		&lead.TelegramID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Username,
		&lead.Source,
		&lead.ChannelID,
		&lead.Status,
		&joinedAt,
		&lead.CreatedAt,
		&lead.LastActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if joinedAt.Valid {
		lead.JoinedAt = &joinedAt.Time
	}

	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
