package entity

import (
	"context"
	"time"
)

type Channel struct {
	ID         string `json:"id"`
	BotID      string `json:"bot_id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	TelegramID string `json:"telegram_id,omitempty"`

	MemberCount     int    `json:"member_count"`
	WelcomeEnabled  bool   `json:"welcome_enabled"`
	WelcomeMessage  string `json:"welcome_message,omitempty"`
	TrackingEnabled bool   `json:"tracking_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Channel settings are free-form key/value pairs ("welcome_delay", etc).
const SettingWelcomeDelay = "welcome_delay"

type ChannelRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Channel, error)

	// FindByTelegramID returns (nil, nil) when no channel matches.
	FindByTelegramID(ctx context.Context, telegramID string) (*Channel, error)

	UpdateMemberCount(ctx context.Context, id string, count int) error

	// GetSetting returns "" when the key is not set for the channel.
	GetSetting(ctx context.Context, channelID, key string) (string, error)
}
