package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/leadgram/leadgram/internal/entity"
)

type ScheduleMessageInput struct {
	BotID         string    `json:"bot_id"`
	ChannelID     string    `json:"channel_id"`
	Message       string    `json:"message"`
	ScheduledTime time.Time `json:"scheduled_time"`
	RepeatType    string    `json:"repeat_type"`
	RepeatDays    []int     `json:"repeat_days,omitempty"`
	RepeatTime    string    `json:"repeat_time,omitempty"`

	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
	DisableNotification   bool   `json:"disable_notification,omitempty"`
}

type ScheduleMessageUseCase struct {
	MsgRepo     entity.ScheduledMessageRepositoryInterface
	BotRepo     entity.BotRepositoryInterface
	ChannelRepo entity.ChannelRepositoryInterface
}

func NewScheduleMessageUseCase(
	msgRepo entity.ScheduledMessageRepositoryInterface,
	botRepo entity.BotRepositoryInterface,
	channelRepo entity.ChannelRepositoryInterface,
) *ScheduleMessageUseCase {
	return &ScheduleMessageUseCase{
		MsgRepo:     msgRepo,
		BotRepo:     botRepo,
		ChannelRepo: channelRepo,
	}
}

func (uc *ScheduleMessageUseCase) Execute(ctx context.Context, input ScheduleMessageInput) (*entity.ScheduledMessage, error) {
	if _, err := uc.BotRepo.FindByID(ctx, input.BotID); err != nil {
		return nil, ErrBotNotFound
	}

	channel, err := uc.ChannelRepo.FindByID(ctx, input.ChannelID)
	if err != nil {
		return nil, ErrChannelNotFound
	}
	if channel.TelegramID == "" {
		return nil, ErrChannelNoTelegramID
	}

	msg, err := entity.NewScheduledMessage(input.BotID, input.ChannelID, input.Message, input.ScheduledTime, input.RepeatType)
	if err != nil {
		return nil, &DomainError{Code: "invalid_schedule", Message: err.Error()}
	}

	msg.RepeatDays = input.RepeatDays
	msg.RepeatTime = input.RepeatTime
	msg.ParseMode = input.ParseMode
	msg.DisableWebPagePreview = input.DisableWebPagePreview
	msg.DisableNotification = input.DisableNotification

	// Optional fields can invalidate the message (bad repeat_days etc).
	if err := msg.Validate(); err != nil {
		return nil, &DomainError{Code: "invalid_schedule", Message: err.Error()}
	}

	if err := uc.MsgRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist scheduled message: %w", err)
	}

	return msg, nil
}
