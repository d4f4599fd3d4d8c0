package entity

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	RepeatOnce    = "once"
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

const (
	MessageStatusPending    = "pending"
	MessageStatusProcessing = "processing"
	MessageStatusSent       = "sent"
	MessageStatusFailed     = "failed"
)

var repeatTimeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

type ScheduledMessage struct {
	ID        string `json:"id"`
	BotID     string `json:"bot_id"`
	ChannelID string `json:"channel_id"`
	Message   string `json:"message"`

	ScheduledTime time.Time `json:"scheduled_time"`
	RepeatType    string    `json:"repeat_type"`
	RepeatDays    []int     `json:"repeat_days,omitempty"` // 0-6, Sunday-Saturday
	RepeatTime    string    `json:"repeat_time,omitempty"` // HH:MM

	// "sent" is terminal and only ever reached by "once" messages.
	// Repeating messages stay "pending" and are gated by LastSent.
	Status   string     `json:"status"`
	Attempts int        `json:"attempts"`
	LastSent *time.Time `json:"last_sent,omitempty"`

	ParseMode             string `json:"parse_mode,omitempty"` // HTML, Markdown, MarkdownV2
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
	DisableNotification   bool   `json:"disable_notification"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewScheduledMessage(botID, channelID, message string, scheduledTime time.Time, repeatType string) (*ScheduledMessage, error) {
	now := time.Now()
	msg := &ScheduledMessage{
		ID:            uuid.New().String(),
		BotID:         botID,
		ChannelID:     channelID,
		Message:       message,
		ScheduledTime: scheduledTime,
		RepeatType:    repeatType,
		Status:        MessageStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	return msg, nil
}

func (m *ScheduledMessage) Validate() error {
	if m.BotID == "" {
		return errors.New("bot_id is required")
	}
	if m.ChannelID == "" {
		return errors.New("channel_id is required")
	}
	if m.Message == "" {
		return errors.New("message is required")
	}
	if m.ScheduledTime.IsZero() {
		return errors.New("scheduled_time is required")
	}

	switch m.RepeatType {
	case RepeatOnce, RepeatDaily, RepeatMonthly:
	case RepeatWeekly:
		for _, day := range m.RepeatDays {
			if day < 0 || day > 6 {
				return errors.New("repeat_days must contain weekday indices 0-6")
			}
		}
	default:
		return errors.New("repeat_type must be once, daily, weekly or monthly")
	}

	if m.RepeatTime != "" && !repeatTimeRe.MatchString(m.RepeatTime) {
		return errors.New("repeat_time must be in HH:MM format")
	}

	return nil
}

type ScheduledMessageFilters struct {
	BotID     string
	ChannelID string
	Status    string
}

type ScheduledMessageRepositoryInterface interface {
	Create(ctx context.Context, msg *ScheduledMessage) error
	FindByID(ctx context.Context, id string) (*ScheduledMessage, error)
	List(ctx context.Context, filters ScheduledMessageFilters) ([]*ScheduledMessage, error)

	// FindDue returns pending messages with scheduled_time <= now.
	FindDue(ctx context.Context, now time.Time) ([]*ScheduledMessage, error)

	// Claim transitions a row pending -> processing iff its last_sent still
	// matches what the caller read. Returns false when another tick won.
	Claim(ctx context.Context, id string, lastSent *time.Time) (bool, error)

	// MarkSent records a successful dispatch: status, last_sent and a reset
	// attempt counter.
	MarkSent(ctx context.Context, id, status string, sentAt time.Time) error

	// MarkFailed records a failed dispatch. A permanent failure lands on
	// status "failed"; otherwise the row goes back to "pending".
	MarkFailed(ctx context.Context, id string, attempts int, permanent bool) error
}
