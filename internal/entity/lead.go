package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	LeadStatusActive   = "active"
	LeadStatusInactive = "inactive"
	LeadStatusLeft     = "left"
)

type Lead struct {
	ID         string `json:"id"`
	Email      string `json:"email,omitempty"`
	TelegramID string `json:"telegram_id,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Username   string `json:"username,omitempty"`

	Source    string `json:"source,omitempty"` // "telegram", referrer URL, "unknown"
	ChannelID string `json:"channel_id,omitempty"`
	Status    string `json:"status"`

	JoinedAt   *time.Time `json:"joined_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastActive time.Time  `json:"last_active"`
}

// Factory
func NewLead() *Lead {
	now := time.Now()
	return &Lead{
		ID:         uuid.New().String(),
		Status:     LeadStatusActive,
		CreatedAt:  now,
		LastActive: now,
	}
}

type LeadRepositoryInterface interface {

	// FindByTelegramID and FindByEmail return (nil, nil) when no lead matches.
	FindByTelegramID(ctx context.Context, telegramID string) (*Lead, error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)

	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, lead *Lead) error
	UpdateStatus(ctx context.Context, id, status string) error
}
