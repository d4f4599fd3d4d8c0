package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/leadgram/leadgram/internal/entity"
	"github.com/leadgram/leadgram/internal/infra/integration/telegram"
)

// SendWelcomeUseCase delivers the per-channel welcome template to a newly
// joined member. State is resolved at fire time, never enqueue time, so
// edits made during the delay window are honored.
type SendWelcomeUseCase struct {
	ChannelRepo entity.ChannelRepositoryInterface
	BotRepo     entity.BotRepositoryInterface
	LeadRepo    entity.LeadRepositoryInterface
	EventRepo   entity.EventRepositoryInterface
	WelcomeRepo entity.WelcomeQueueRepositoryInterface
	Telegram    TelegramAPI
}

func NewSendWelcomeUseCase(
	channelRepo entity.ChannelRepositoryInterface,
	botRepo entity.BotRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	eventRepo entity.EventRepositoryInterface,
	welcomeRepo entity.WelcomeQueueRepositoryInterface,
	api TelegramAPI,
) *SendWelcomeUseCase {
	return &SendWelcomeUseCase{
		ChannelRepo: channelRepo,
		BotRepo:     botRepo,
		LeadRepo:    leadRepo,
		EventRepo:   eventRepo,
		WelcomeRepo: welcomeRepo,
		Telegram:    api,
	}
}

// Send resolves channel, bot and lead and delivers the personalized welcome.
func (uc *SendWelcomeUseCase) Send(ctx context.Context, chatID, userID, channelID string) error {
	channel, err := uc.ChannelRepo.FindByID(ctx, channelID)
	if err != nil {
		return ErrChannelNotFound
	}
	if !channel.WelcomeEnabled || channel.WelcomeMessage == "" {
		return ErrWelcomeNotConfigured
	}

	bot, err := uc.BotRepo.FindByID(ctx, channel.BotID)
	if err != nil {
		return ErrBotNotFound
	}

	lead, err := uc.LeadRepo.FindByTelegramID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup lead %s: %w", userID, err)
	}
	if lead == nil {
		return ErrLeadNotFound
	}

	text := channel.WelcomeMessage
	text = strings.ReplaceAll(text, "{name}", lead.FirstName)
	text = strings.ReplaceAll(text, "{channel}", channel.Name)

	sent, err := uc.Telegram.SendMessage(ctx, bot.Token, chatID, text, telegram.SendMessageOptions{})
	if err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}

	event := entity.NewEvent(lead.ID, entity.EventWelcomeMessageSent, map[string]interface{}{
		"channel_id":          channel.ID,
		"channel_name":        channel.Name,
		"telegram_message_id": sent.MessageID,
	})
	if err := uc.EventRepo.Create(ctx, event); err != nil {
		log.Printf("⚠️ Could not record welcome event for lead %s: %v", lead.ID, err)
	}

	return nil
}

// Deliver fires a queued entry coming off the broker. The claim keeps the
// broker consumer and the recovery sweep from double-sending the same entry.
func (uc *SendWelcomeUseCase) Deliver(ctx context.Context, entryID string) error {
	claimed, err := uc.WelcomeRepo.Claim(ctx, entryID)
	if err != nil {
		return fmt.Errorf("claim welcome entry %s: %w", entryID, err)
	}
	if !claimed {
		// Already handled (or in flight) elsewhere.
		return nil
	}

	entry, err := uc.WelcomeRepo.FindByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("load welcome entry %s: %w", entryID, err)
	}

	return uc.DeliverClaimed(ctx, entry)
}

// DeliverClaimed sends an entry the caller already claimed. Disabled welcome
// messaging or vanished channel/bot/lead is a silent no-op, recorded as
// cancelled.
func (uc *SendWelcomeUseCase) DeliverClaimed(ctx context.Context, entry *entity.WelcomeQueueEntry) error {
	err := uc.Send(ctx, entry.ChatID, entry.UserID, entry.ChannelID)

	switch {
	case err == nil:
		return uc.WelcomeRepo.UpdateStatus(ctx, entry.ID, entity.WelcomeStatusSent)

	case isWelcomeNoOp(err):
		log.Printf("ℹ️ Welcome entry %s cancelled: %v", entry.ID, err)
		return uc.WelcomeRepo.UpdateStatus(ctx, entry.ID, entity.WelcomeStatusCancelled)

	default:
		if updateErr := uc.WelcomeRepo.UpdateStatus(ctx, entry.ID, entity.WelcomeStatusFailed); updateErr != nil {
			log.Printf("❌ Could not mark welcome entry %s failed: %v", entry.ID, updateErr)
		}
		return err
	}
}

func isWelcomeNoOp(err error) bool {
	return errors.Is(err, ErrWelcomeNotConfigured) ||
		errors.Is(err, ErrChannelNotFound) ||
		errors.Is(err, ErrBotNotFound) ||
		errors.Is(err, ErrLeadNotFound)
}
