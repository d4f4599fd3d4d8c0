package usecase

import (
	"context"

	"github.com/leadgram/leadgram/internal/infra/integration/telegram"
)

// TelegramAPI is the outbound provider surface the usecases depend on.
// *telegram.Client satisfies it; tests substitute a mock.
type TelegramAPI interface {
	SendMessage(ctx context.Context, token, chatID, text string, opts telegram.SendMessageOptions) (*telegram.Message, error)
	GetChatMemberCount(ctx context.Context, token, chatID string) (int, error)
	SetWebhook(ctx context.Context, token, url string) error
}

// WelcomeSender is the synchronous welcome path (delay = 0).
type WelcomeSender interface {
	Send(ctx context.Context, chatID, userID, channelID string) error
}

// AlertService notifies an operator when a scheduled message is marked
// permanently failed. Wired to the SMTP sender; nil disables alerts.
type AlertService interface {
	SendScheduledMessageAlert(messageID, channelName, reason string) error
}
