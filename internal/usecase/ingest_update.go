package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/leadgram/leadgram/internal/entity"
	"github.com/leadgram/leadgram/internal/infra/integration/telegram"
	"github.com/leadgram/leadgram/internal/infra/queue"
)

// IngestUpdateUseCase turns Telegram membership updates into lead and event
// rows and kicks off the welcome dispatch. Best-effort, at-least-once: no
// partial-state rollback.
type IngestUpdateUseCase struct {
	ChannelRepo entity.ChannelRepositoryInterface
	BotRepo     entity.BotRepositoryInterface
	LeadRepo    entity.LeadRepositoryInterface
	EventRepo   entity.EventRepositoryInterface
	WelcomeRepo entity.WelcomeQueueRepositoryInterface
	Producer    queue.WelcomeProducerInterface
	Telegram    TelegramAPI
	Welcome     WelcomeSender
}

func NewIngestUpdateUseCase(
	channelRepo entity.ChannelRepositoryInterface,
	botRepo entity.BotRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	eventRepo entity.EventRepositoryInterface,
	welcomeRepo entity.WelcomeQueueRepositoryInterface,
	producer queue.WelcomeProducerInterface,
	api TelegramAPI,
	welcome WelcomeSender,
) *IngestUpdateUseCase {
	return &IngestUpdateUseCase{
		ChannelRepo: channelRepo,
		BotRepo:     botRepo,
		LeadRepo:    leadRepo,
		EventRepo:   eventRepo,
		WelcomeRepo: welcomeRepo,
		Producer:    producer,
		Telegram:    api,
		Welcome:     welcome,
	}
}

// Execute processes a single update envelope. Unrecognized shapes are a
// successful no-op: Telegram must not retry them.
func (uc *IngestUpdateUseCase) Execute(ctx context.Context, update *telegram.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}

	if len(update.Message.NewChatMembers) > 0 {
		return uc.handleNewMembers(ctx, update.Message)
	}

	if update.Message.LeftChatMember != nil {
		return uc.handleLeftMember(ctx, update.Message)
	}

	return nil
}

func (uc *IngestUpdateUseCase) handleNewMembers(ctx context.Context, msg *telegram.UpdateMessage) error {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	channel, err := uc.ChannelRepo.FindByTelegramID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("lookup channel %s: %w", chatID, err)
	}
	if channel == nil {
		log.Printf("⚠️ Channel not found for chat ID: %s", chatID)
		return ErrChannelNotFound
	}

	bot, err := uc.BotRepo.FindByID(ctx, channel.BotID)
	if err != nil {
		log.Printf("⚠️ Bot not found for channel: %s", channel.ID)
		return ErrBotNotFound
	}

	uc.refreshMemberCount(ctx, bot.Token, chatID, channel.ID)

	for _, member := range msg.NewChatMembers {
		if member.IsBot {
			continue
		}

		if err := uc.processJoin(ctx, channel, member, chatID); err != nil {
			return err
		}
	}

	return nil
}

func (uc *IngestUpdateUseCase) processJoin(ctx context.Context, channel *entity.Channel, member telegram.User, chatID string) error {
	telegramID := strconv.FormatInt(member.ID, 10)
	now := time.Now()

	lead, err := uc.LeadRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("lookup lead %s: %w", telegramID, err)
	}

	if lead != nil {
		lead.ChannelID = channel.ID
		lead.JoinedAt = &now
		lead.Status = entity.LeadStatusActive
		lead.FirstName = member.FirstName
		lead.LastName = member.LastName
		lead.Username = member.Username

		if err := uc.LeadRepo.Update(ctx, lead); err != nil {
			return fmt.Errorf("update lead %s: %w", lead.ID, err)
		}
	} else {
		lead = entity.NewLead()
		lead.TelegramID = telegramID
		lead.FirstName = member.FirstName
		lead.LastName = member.LastName
		lead.Username = member.Username
		lead.ChannelID = channel.ID
		lead.Source = "telegram"
		lead.JoinedAt = &now

		if err := uc.LeadRepo.Create(ctx, lead); err != nil {
			return fmt.Errorf("create lead: %w", err)
		}
	}

	event := entity.NewEvent(lead.ID, entity.EventChannelJoin, map[string]interface{}{
		"channel_id":   channel.ID,
		"channel_name": channel.Name,
	})
	if err := uc.EventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create join event: %w", err)
	}

	if channel.WelcomeEnabled && channel.WelcomeMessage != "" {
		uc.scheduleWelcome(ctx, channel, chatID, telegramID)
	}

	return nil
}

// scheduleWelcome never fails the webhook: the join is already recorded and
// the sweep recovers entries whose publish was lost.
func (uc *IngestUpdateUseCase) scheduleWelcome(ctx context.Context, channel *entity.Channel, chatID, telegramID string) {
	delay := uc.welcomeDelay(ctx, channel.ID)

	if delay <= 0 {
		if err := uc.Welcome.Send(ctx, chatID, telegramID, channel.ID); err != nil {
			log.Printf("⚠️ Welcome send failed for channel %s: %v", channel.ID, err)
		}
		return
	}

	entry := entity.NewWelcomeQueueEntry(channel.ID, chatID, telegramID, time.Now().Add(delay))
	if err := uc.WelcomeRepo.Enqueue(ctx, entry); err != nil {
		log.Printf("❌ Welcome enqueue failed for channel %s: %v", channel.ID, err)
		return
	}

	payload := queue.WelcomePayload{
		EntryID:   entry.ID,
		ChannelID: channel.ID,
		ChatID:    chatID,
		UserID:    telegramID,
	}
	if err := uc.Producer.PublishWelcome(ctx, payload, delay); err != nil {
		log.Printf("⚠️ Welcome publish failed, sweep will recover entry %s: %v", entry.ID, err)
	}
}

func (uc *IngestUpdateUseCase) welcomeDelay(ctx context.Context, channelID string) time.Duration {
	value, err := uc.ChannelRepo.GetSetting(ctx, channelID, entity.SettingWelcomeDelay)
	if err != nil {
		log.Printf("⚠️ Could not read welcome_delay for channel %s: %v", channelID, err)
		return 0
	}
	if value == "" {
		return 0
	}

	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

func (uc *IngestUpdateUseCase) handleLeftMember(ctx context.Context, msg *telegram.UpdateMessage) error {
	member := msg.LeftChatMember
	if member.IsBot {
		return nil
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	channel, err := uc.ChannelRepo.FindByTelegramID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("lookup channel %s: %w", chatID, err)
	}
	if channel == nil {
		log.Printf("⚠️ Channel not found for chat ID: %s", chatID)
		return ErrChannelNotFound
	}

	if bot, err := uc.BotRepo.FindByID(ctx, channel.BotID); err == nil {
		uc.refreshMemberCount(ctx, bot.Token, chatID, channel.ID)
	}

	telegramID := strconv.FormatInt(member.ID, 10)
	lead, err := uc.LeadRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("lookup lead %s: %w", telegramID, err)
	}
	if lead == nil {
		// Unknown member leaving is not an error.
		return nil
	}

	if err := uc.LeadRepo.UpdateStatus(ctx, lead.ID, entity.LeadStatusLeft); err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}

	event := entity.NewEvent(lead.ID, entity.EventChannelLeave, map[string]interface{}{
		"channel_id":   channel.ID,
		"channel_name": channel.Name,
	})
	if err := uc.EventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create leave event: %w", err)
	}

	return nil
}

// refreshMemberCount is best-effort: a count failure never aborts lead
// processing.
func (uc *IngestUpdateUseCase) refreshMemberCount(ctx context.Context, token, chatID, channelID string) {
	count, err := uc.Telegram.GetChatMemberCount(ctx, token, chatID)
	if err != nil {
		log.Printf("⚠️ Member count fetch failed for chat %s: %v", chatID, err)
		return
	}

	if err := uc.ChannelRepo.UpdateMemberCount(ctx, channelID, count); err != nil {
		log.Printf("⚠️ Member count update failed for channel %s: %v", channelID, err)
	}
}
