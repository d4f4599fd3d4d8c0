package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/leadgram/leadgram/internal/entity"
	"github.com/leadgram/leadgram/internal/infra/integration/telegram"
)

// DefaultMaxAttempts caps provider retries across ticks before a row is
// marked permanently failed.
const DefaultMaxAttempts = 3

type MessageResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ProcessResult struct {
	Processed int             `json:"processed"`
	Results   []MessageResult `json:"results,omitempty"`
}

// ProcessScheduledMessagesUseCase is the cron tick entry point. It selects
// due rows, applies the recurrence gate, claims each row and dispatches.
// Rows are independent: one failure never affects the rest of the batch.
type ProcessScheduledMessagesUseCase struct {
	MsgRepo     entity.ScheduledMessageRepositoryInterface
	ChannelRepo entity.ChannelRepositoryInterface
	BotRepo     entity.BotRepositoryInterface
	EventRepo   entity.EventRepositoryInterface
	Telegram    TelegramAPI
	Alerts      AlertService // optional
	MaxAttempts int

	// Now is overridable so tests can pin the tick instant.
	Now func() time.Time
}

func NewProcessScheduledMessagesUseCase(
	msgRepo entity.ScheduledMessageRepositoryInterface,
	channelRepo entity.ChannelRepositoryInterface,
	botRepo entity.BotRepositoryInterface,
	eventRepo entity.EventRepositoryInterface,
	api TelegramAPI,
	alerts AlertService,
) *ProcessScheduledMessagesUseCase {
	return &ProcessScheduledMessagesUseCase{
		MsgRepo:     msgRepo,
		ChannelRepo: channelRepo,
		BotRepo:     botRepo,
		EventRepo:   eventRepo,
		Telegram:    api,
		Alerts:      alerts,
		MaxAttempts: DefaultMaxAttempts,
		Now:         time.Now,
	}
}

func (uc *ProcessScheduledMessagesUseCase) Execute(ctx context.Context) (*ProcessResult, error) {
	now := uc.Now()

	messages, err := uc.MsgRepo.FindDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("find due messages: %w", err)
	}

	result := &ProcessResult{}
	for _, msg := range messages {
		result.Results = append(result.Results, uc.processOne(ctx, msg, now))
	}
	result.Processed = len(result.Results)

	return result, nil
}

func (uc *ProcessScheduledMessagesUseCase) processOne(ctx context.Context, msg *entity.ScheduledMessage, now time.Time) MessageResult {
	// Repeating messages with a prior send are gated by the recurrence rule.
	// A fresh repeating row (last_sent unset) fires immediately.
	if msg.RepeatType != entity.RepeatOnce && msg.LastSent != nil {
		if !ShouldSendRepeatingMessage(msg, *msg.LastSent, now) {
			return MessageResult{ID: msg.ID, Skipped: true}
		}
	}

	// Claim the row so overlapping ticks cannot both dispatch it.
	claimed, err := uc.MsgRepo.Claim(ctx, msg.ID, msg.LastSent)
	if err != nil {
		return MessageResult{ID: msg.ID, Error: err.Error()}
	}
	if !claimed {
		return MessageResult{ID: msg.ID, Skipped: true}
	}

	return uc.dispatch(ctx, msg, now)
}

func (uc *ProcessScheduledMessagesUseCase) dispatch(ctx context.Context, msg *entity.ScheduledMessage, now time.Time) MessageResult {
	bot, err := uc.BotRepo.FindByID(ctx, msg.BotID)
	if err != nil {
		return uc.fail(ctx, msg, fmt.Sprintf("bot %s not found", msg.BotID), true)
	}

	channel, err := uc.ChannelRepo.FindByID(ctx, msg.ChannelID)
	if err != nil {
		return uc.fail(ctx, msg, fmt.Sprintf("channel %s not found", msg.ChannelID), true)
	}
	if channel.TelegramID == "" {
		return uc.fail(ctx, msg, fmt.Sprintf("channel %s does not have a Telegram ID", msg.ChannelID), true)
	}

	sent, err := uc.Telegram.SendMessage(ctx, bot.Token, channel.TelegramID, msg.Message, telegram.SendMessageOptions{
		ParseMode:             msg.ParseMode,
		DisableWebPagePreview: msg.DisableWebPagePreview,
		DisableNotification:   msg.DisableNotification,
	})
	if err != nil {
		attempts := msg.Attempts + 1
		permanent := attempts >= uc.maxAttempts()
		return uc.failWithAttempts(ctx, msg, channel.Name, err.Error(), attempts, permanent)
	}

	status := entity.MessageStatusPending
	if msg.RepeatType == entity.RepeatOnce {
		status = entity.MessageStatusSent
	}

	if err := uc.MsgRepo.MarkSent(ctx, msg.ID, status, now); err != nil {
		log.Printf("❌ Could not mark message %s as sent: %v", msg.ID, err)
		return MessageResult{ID: msg.ID, Error: err.Error()}
	}

	event := entity.NewEvent(entity.SystemLeadID, entity.EventScheduledMessageSent, map[string]interface{}{
		"message_id":          msg.ID,
		"bot_id":              msg.BotID,
		"channel_id":          msg.ChannelID,
		"telegram_message_id": sent.MessageID,
	})
	if err := uc.EventRepo.Create(ctx, event); err != nil {
		log.Printf("⚠️ Could not record send event for message %s: %v", msg.ID, err)
	}

	return MessageResult{ID: msg.ID, Success: true}
}

// fail handles unrecoverable dispatch preconditions (missing bot/channel).
func (uc *ProcessScheduledMessagesUseCase) fail(ctx context.Context, msg *entity.ScheduledMessage, reason string, permanent bool) MessageResult {
	return uc.failWithAttempts(ctx, msg, "", reason, msg.Attempts+1, permanent)
}

func (uc *ProcessScheduledMessagesUseCase) failWithAttempts(ctx context.Context, msg *entity.ScheduledMessage, channelName, reason string, attempts int, permanent bool) MessageResult {
	if err := uc.MsgRepo.MarkFailed(ctx, msg.ID, attempts, permanent); err != nil {
		log.Printf("❌ Could not mark message %s as failed: %v", msg.ID, err)
	}

	if permanent {
		log.Printf("❌ Scheduled message %s permanently failed after %d attempts: %s", msg.ID, attempts, reason)
		if uc.Alerts != nil {
			if err := uc.Alerts.SendScheduledMessageAlert(msg.ID, channelName, reason); err != nil {
				log.Printf("⚠️ Failure alert for message %s not delivered: %v", msg.ID, err)
			}
		}
	} else {
		log.Printf("⚠️ Scheduled message %s failed (attempt %d/%d): %s", msg.ID, attempts, uc.maxAttempts(), reason)
	}

	return MessageResult{ID: msg.ID, Error: reason}
}

func (uc *ProcessScheduledMessagesUseCase) maxAttempts() int {
	if uc.MaxAttempts > 0 {
		return uc.MaxAttempts
	}
	return DefaultMaxAttempts
}

// ShouldSendRepeatingMessage decides whether a repeating message fires on
// this tick. The gate is an exact hour:minute match against repeat_time plus
// a per-type guard against double-firing inside the same window:
//
//	daily:   last send on a different calendar day
//	weekly:  today's weekday in repeat_days and >= 24h since last send
//	monthly: same day-of-month as the anchor and a different month/year
//
// Without repeat_time the target falls back to the current hour:minute,
// which degenerates to "any tick" (gated only by the per-type guard).
func ShouldSendRepeatingMessage(msg *entity.ScheduledMessage, lastSent, now time.Time) bool {
	targetHour, targetMinute := now.Hour(), now.Minute()
	if msg.RepeatTime != "" {
		if h, m, ok := parseRepeatTime(msg.RepeatTime); ok {
			targetHour, targetMinute = h, m
		}
	}

	timeMatches := now.Hour() == targetHour && now.Minute() == targetMinute

	switch msg.RepeatType {
	case entity.RepeatDaily:
		return timeMatches && !sameCalendarDay(lastSent, now)

	case entity.RepeatWeekly:
		return timeMatches &&
			containsDay(msg.RepeatDays, int(now.Weekday())) &&
			now.Sub(lastSent) >= 24*time.Hour

	case entity.RepeatMonthly:
		return timeMatches &&
			now.Day() == msg.ScheduledTime.Day() &&
			(now.Month() != lastSent.Month() || now.Year() != lastSent.Year())

	default:
		return false
	}
}

func parseRepeatTime(value string) (hour, minute int, ok bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}

	return hour, minute, true
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
