package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/leadgram/leadgram/internal/entity"
)

type EventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{DB: db}
}

// Create appends an event. Events are never updated or deleted here.
func (r *EventRepository) Create(ctx context.Context, event *entity.Event) error {
	data, err := json.Marshal(event.EventData)
	if err != nil {
		return fmt.Errorf("marshal event_data: %w", err)
	}

	query := `
		INSERT INTO events (id, lead_id, event_type, event_data, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	return r.DB.QueryRowContext(
		ctx,
		query,
		event.ID,
		event.LeadID,
		event.EventType,
		data,
	).Scan(&event.CreatedAt)
}
