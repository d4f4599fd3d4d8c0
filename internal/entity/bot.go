package entity

import (
	"context"
	"time"
)

type Bot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Token    string `json:"-"`
	Status   string `json:"status"`

	WebhookURL         string     `json:"webhook_url,omitempty"`
	WebhookStatus      string     `json:"webhook_status,omitempty"`
	WebhookLastUpdated *time.Time `json:"webhook_last_updated,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BotRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Bot, error)
	UpdateWebhook(ctx context.Context, id, url, status string) error
}
