package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	WelcomeStatusPending    = "pending"
	WelcomeStatusProcessing = "processing"
	WelcomeStatusSent       = "sent"
	WelcomeStatusFailed     = "failed"
	WelcomeStatusCancelled  = "cancelled"
)

// WelcomeQueueEntry is a deferred welcome send. The row survives restarts;
// channel/bot/lead state is re-resolved at fire time, not enqueue time.
type WelcomeQueueEntry struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	ChatID    string `json:"chat_id"`
	UserID    string `json:"user_id"` // telegram user id of the joined member

	ScheduledTime time.Time `json:"scheduled_time"`
	Status        string    `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWelcomeQueueEntry(channelID, chatID, userID string, fireAt time.Time) *WelcomeQueueEntry {
	now := time.Now()
	return &WelcomeQueueEntry{
		ID:            uuid.New().String(),
		ChannelID:     channelID,
		ChatID:        chatID,
		UserID:        userID,
		ScheduledTime: fireAt,
		Status:        WelcomeStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

type WelcomeQueueRepositoryInterface interface {
	Enqueue(ctx context.Context, entry *WelcomeQueueEntry) error
	FindByID(ctx context.Context, id string) (*WelcomeQueueEntry, error)

	// Claim transitions pending -> processing. Returns false when the entry
	// was already picked up by the broker consumer or the sweep.
	Claim(ctx context.Context, id string) (bool, error)

	// ClaimDue atomically claims overdue pending entries (recovery sweep).
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*WelcomeQueueEntry, error)

	UpdateStatus(ctx context.Context, id, status string) error
}
