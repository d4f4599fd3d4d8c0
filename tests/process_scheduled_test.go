package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/leadgram/leadgram/internal/entity"
	"github.com/leadgram/leadgram/internal/infra/integration/telegram"
	"github.com/leadgram/leadgram/internal/usecase"
)

func newProcessUseCase(msgRepo *MockScheduledMessageRepository, channelRepo *MockChannelRepository, botRepo *MockBotRepository, eventRepo *MockEventRepository, api *MockTelegramAPI, alerts *MockAlertService, now time.Time) *usecase.ProcessScheduledMessagesUseCase {
	uc := usecase.NewProcessScheduledMessagesUseCase(msgRepo, channelRepo, botRepo, eventRepo, api, alerts)
	uc.Now = func() time.Time { return now }
	return uc
}

func testBot() *entity.Bot {
	return &entity.Bot{ID: "bot-1", Name: "Leadgram Bot", Username: "@leadgram_bot", Token: "123:abc", Status: "active"}
}

func testChannel() *entity.Channel {
	return &entity.Channel{
		ID:         "chan-1",
		BotID:      "bot-1",
		Name:       "Growth Tips",
		Username:   "@growthtips",
		TelegramID: "-100200300",
	}
}

func TestProcessOnceMessageSentExactlyOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	msgRepo := new(MockScheduledMessageRepository)
	channelRepo := new(MockChannelRepository)
	botRepo := new(MockBotRepository)
	eventRepo := new(MockEventRepository)
	api := new(MockTelegramAPI)
	alerts := new(MockAlertService)

	msg := &entity.ScheduledMessage{
		ID:            "msg-1",
		BotID:         "bot-1",
		ChannelID:     "chan-1",
		Message:       "Launch day!",
		ScheduledTime: now.Add(-time.Minute),
		RepeatType:    entity.RepeatOnce,
		Status:        entity.MessageStatusPending,
	}

	msgRepo.On("FindDue", ctx, now).Return([]*entity.ScheduledMessage{msg}, nil)
	msgRepo.On("Claim", ctx, "msg-1", (*time.Time)(nil)).Return(true, nil)
	botRepo.On("FindByID", ctx, "bot-1").Return(testBot(), nil)
	channelRepo.On("FindByID", ctx, "chan-1").Return(testChannel(), nil)
	api.On("SendMessage", ctx, "123:abc", "-100200300", "Launch day!", mock.Anything).
		Return(&telegram.Message{MessageID: 42}, nil)
	msgRepo.On("MarkSent", ctx, "msg-1", entity.MessageStatusSent, now).Return(nil)
	eventRepo.On("Create", ctx, mock.MatchedBy(func(e *entity.Event) bool {
		return e.EventType == entity.EventScheduledMessageSent &&
			e.LeadID == entity.SystemLeadID &&
			e.EventData["telegram_message_id"] == int64(42)
	})).Return(nil)

	uc := newProcessUseCase(msgRepo, channelRepo, botRepo, eventRepo, api, alerts, now)

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.True(t, result.Results[0].Success)
	msgRepo.AssertNumberOfCalls(t, "MarkSent", 1)
	api.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestProcessDailyMessageStaysPending(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	lastSent := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	msgRepo := new(MockScheduledMessageRepository)
	channelRepo := new(MockChannelRepository)
	botRepo := new(MockBotRepository)
	eventRepo := new(MockEventRepository)
	api := new(MockTelegramAPI)
	alerts := new(MockAlertService)

	msg := &entity.ScheduledMessage{
		ID:            "msg-2",
		BotID:         "bot-1",
		ChannelID:     "chan-1",
		Message:       "Daily digest",
		ScheduledTime: lastSent,
		RepeatType:    entity.RepeatDaily,
		RepeatTime:    "09:00",
		Status:        entity.MessageStatusPending,
		LastSent:      &lastSent,
	}

	msgRepo.On("FindDue", ctx, now).Return([]*entity.ScheduledMessage{msg}, nil)
	msgRepo.On("Claim", ctx, "msg-2", &lastSent).Return(true, nil)
	botRepo.On("FindByID", ctx, "bot-1").Return(testBot(), nil)
	channelRepo.On("FindByID", ctx, "chan-1").Return(testChannel(), nil)
	api.On("SendMessage", ctx, "123:abc", "-100200300", "Daily digest", mock.Anything).
		Return(&telegram.Message{MessageID: 7}, nil)
	// Repeating messages return to pending so the next day picks them up.
	msgRepo.On("MarkSent", ctx, "msg-2", entity.MessageStatusPending, now).Return(nil)
	eventRepo.On("Create", ctx, mock.Anything).Return(nil)

	uc := newProcessUseCase(msgRepo, channelRepo, botRepo, eventRepo, api, alerts, now)

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.True(t, result.Results[0].Success)
	msgRepo.AssertCalled(t, "MarkSent", ctx, "msg-2", entity.MessageStatusPending, now)
}

func TestProcessDailyMessageGatedOffTheTargetMinute(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 9, 17, 0, 0, time.UTC)
	lastSent := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	msgRepo := new(MockScheduledMessageRepository)
	alerts := new(MockAlertService)

	msg := &entity.ScheduledMessage{
		ID:         "msg-3",
		BotID:      "bot-1",
		ChannelID:  "chan-1",
		Message:    "Daily digest",
		RepeatType: entity.RepeatDaily,
		RepeatTime: "09:00",
		Status:     entity.MessageStatusPending,
		LastSent:   &lastSent,
	}

	msgRepo.On("FindDue", ctx, now).Return([]*entity.ScheduledMessage{msg}, nil)

	uc := newProcessUseCase(msgRepo, new(MockChannelRepository), new(MockBotRepository), new(MockEventRepository), new(MockTelegramAPI), alerts, now)

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.True(t, result.Results[0].Skipped)
	msgRepo.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessSkipsWhenClaimLost(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	msgRepo := new(MockScheduledMessageRepository)
	api := new(MockTelegramAPI)

	msg := &entity.ScheduledMessage{
		ID:         "msg-4",
		BotID:      "bot-1",
		ChannelID:  "chan-1",
		Message:    "contested",
		RepeatType: entity.RepeatOnce,
		Status:     entity.MessageStatusPending,
	}

	msgRepo.On("FindDue", ctx, now).Return([]*entity.ScheduledMessage{msg}, nil)
	msgRepo.On("Claim", ctx, "msg-4", (*time.Time)(nil)).Return(false, nil)

	uc := newProcessUseCase(msgRepo, new(MockChannelRepository), new(MockBotRepository), new(MockEventRepository), api, new(MockAlertService), now)

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.True(t, result.Results[0].Skipped)
	api.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessSendFailureIncrementsAttempts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	msgRepo := new(MockScheduledMessageRepository)
	channelRepo := new(MockChannelRepository)
	botRepo := new(MockBotRepository)
	api := new(MockTelegramAPI)
	alerts := new(MockAlertService)

	msg := &entity.ScheduledMessage{
		ID:         "msg-5",
		BotID:      "bot-1",
		ChannelID:  "chan-1",
		Message:    "flaky",
		RepeatType: entity.RepeatOnce,
		Status:     entity.MessageStatusPending,
		Attempts:   0,
	}

	msgRepo.On("FindDue", ctx, now).Return([]*entity.ScheduledMessage{msg}, nil)
	msgRepo.On("Claim", ctx, "msg-5", (*time.Time)(nil)).Return(true, nil)
	botRepo.On("FindByID", ctx, "bot-1").Return(testBot(), nil)
	channelRepo.On("FindByID", ctx, "chan-1").Return(testChannel(), nil)
	api.On("SendMessage", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("telegram: 502"))
	msgRepo.On("MarkFailed", ctx, "msg-5", 1, false).Return(nil)

	uc := newProcessUseCase(msgRepo, channelRepo, botRepo, new(MockEventRepository), api, alerts, now)

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.False(t, result.Results[0].Success)
	msgRepo.AssertCalled(t, "MarkFailed", ctx, "msg-5", 1, false)
	alerts.AssertNotCalled(t, "SendScheduledMessageAlert", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessExhaustedAttemptsAlertsOperator(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	msgRepo := new(MockScheduledMessageRepository)
	channelRepo := new(MockChannelRepository)
	botRepo := new(MockBotRepository)
	api := new(MockTelegramAPI)
	alerts := new(MockAlertService)

	msg := &entity.ScheduledMessage{
		ID:         "msg-6",
		BotID:      "bot-1",
		ChannelID:  "chan-1",
		Message:    "doomed",
		RepeatType: entity.RepeatOnce,
		Status:     entity.MessageStatusPending,
		Attempts:   2,
	}

	msgRepo.On("FindDue", ctx, now).Return([]*entity.ScheduledMessage{msg}, nil)
	msgRepo.On("Claim", ctx, "msg-6", (*time.Time)(nil)).Return(true, nil)
	botRepo.On("FindByID", ctx, "bot-1").Return(testBot(), nil)
	channelRepo.On("FindByID", ctx, "chan-1").Return(testChannel(), nil)
	api.On("SendMessage", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("telegram: chat not found"))
	msgRepo.On("MarkFailed", ctx, "msg-6", 3, true).Return(nil)
	alerts.On("SendScheduledMessageAlert", "msg-6", "Growth Tips", mock.Anything).Return(nil)

	uc := newProcessUseCase(msgRepo, channelRepo, botRepo, new(MockEventRepository), api, alerts, now)

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.False(t, result.Results[0].Success)
	msgRepo.AssertCalled(t, "MarkFailed", ctx, "msg-6", 3, true)
	alerts.AssertCalled(t, "SendScheduledMessageAlert", "msg-6", "Growth Tips", mock.Anything)
}

func TestProcessMissingChannelTelegramIDFailsPermanently(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	msgRepo := new(MockScheduledMessageRepository)
	channelRepo := new(MockChannelRepository)
	botRepo := new(MockBotRepository)
	alerts := new(MockAlertService)

	msg := &entity.ScheduledMessage{
		ID:         "msg-7",
		BotID:      "bot-1",
		ChannelID:  "chan-1",
		Message:    "unroutable",
		RepeatType: entity.RepeatOnce,
		Status:     entity.MessageStatusPending,
	}

	channel := testChannel()
	channel.TelegramID = ""

	msgRepo.On("FindDue", ctx, now).Return([]*entity.ScheduledMessage{msg}, nil)
	msgRepo.On("Claim", ctx, "msg-7", (*time.Time)(nil)).Return(true, nil)
	botRepo.On("FindByID", ctx, "bot-1").Return(testBot(), nil)
	channelRepo.On("FindByID", ctx, "chan-1").Return(channel, nil)
	msgRepo.On("MarkFailed", ctx, "msg-7", 1, true).Return(nil)
	alerts.On("SendScheduledMessageAlert", "msg-7", mock.Anything, mock.Anything).Return(nil)

	uc := newProcessUseCase(msgRepo, channelRepo, botRepo, new(MockEventRepository), new(MockTelegramAPI), alerts, now)

	result, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.False(t, result.Results[0].Success)
	msgRepo.AssertCalled(t, "MarkFailed", ctx, "msg-7", 1, true)
}
