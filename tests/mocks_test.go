package tests

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/leadgram/leadgram/internal/entity"
	"github.com/leadgram/leadgram/internal/infra/integration/telegram"
	"github.com/leadgram/leadgram/internal/infra/queue"
)

// MockBotRepository
type MockBotRepository struct {
	mock.Mock
}

func (m *MockBotRepository) FindByID(ctx context.Context, id string) (*entity.Bot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Bot), args.Error(1)
}

func (m *MockBotRepository) UpdateWebhook(ctx context.Context, id, url, status string) error {
	args := m.Called(ctx, id, url, status)
	return args.Error(0)
}

// MockChannelRepository
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) FindByID(ctx context.Context, id string) (*entity.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Channel), args.Error(1)
}

func (m *MockChannelRepository) FindByTelegramID(ctx context.Context, telegramID string) (*entity.Channel, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Channel), args.Error(1)
}

func (m *MockChannelRepository) UpdateMemberCount(ctx context.Context, id string, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

func (m *MockChannelRepository) GetSetting(ctx context.Context, channelID, key string) (string, error) {
	args := m.Called(ctx, channelID, key)
	return args.String(0), args.Error(1)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByTelegramID(ctx context.Context, telegramID string) (*entity.Lead, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockEventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *entity.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockScheduledMessageRepository
type MockScheduledMessageRepository struct {
	mock.Mock
}

func (m *MockScheduledMessageRepository) Create(ctx context.Context, msg *entity.ScheduledMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockScheduledMessageRepository) FindByID(ctx context.Context, id string) (*entity.ScheduledMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ScheduledMessage), args.Error(1)
}

func (m *MockScheduledMessageRepository) List(ctx context.Context, filters entity.ScheduledMessageFilters) ([]*entity.ScheduledMessage, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ScheduledMessage), args.Error(1)
}

func (m *MockScheduledMessageRepository) FindDue(ctx context.Context, now time.Time) ([]*entity.ScheduledMessage, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ScheduledMessage), args.Error(1)
}

func (m *MockScheduledMessageRepository) Claim(ctx context.Context, id string, lastSent *time.Time) (bool, error) {
	args := m.Called(ctx, id, lastSent)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduledMessageRepository) MarkSent(ctx context.Context, id, status string, sentAt time.Time) error {
	args := m.Called(ctx, id, status, sentAt)
	return args.Error(0)
}

func (m *MockScheduledMessageRepository) MarkFailed(ctx context.Context, id string, attempts int, permanent bool) error {
	args := m.Called(ctx, id, attempts, permanent)
	return args.Error(0)
}

// MockWelcomeQueueRepository
type MockWelcomeQueueRepository struct {
	mock.Mock
}

func (m *MockWelcomeQueueRepository) Enqueue(ctx context.Context, entry *entity.WelcomeQueueEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWelcomeQueueRepository) FindByID(ctx context.Context, id string) (*entity.WelcomeQueueEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WelcomeQueueEntry), args.Error(1)
}

func (m *MockWelcomeQueueRepository) Claim(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockWelcomeQueueRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.WelcomeQueueEntry, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.WelcomeQueueEntry), args.Error(1)
}

func (m *MockWelcomeQueueRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockTelegramAPI
type MockTelegramAPI struct {
	mock.Mock
}

func (m *MockTelegramAPI) SendMessage(ctx context.Context, token, chatID, text string, opts telegram.SendMessageOptions) (*telegram.Message, error) {
	args := m.Called(ctx, token, chatID, text, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telegram.Message), args.Error(1)
}

func (m *MockTelegramAPI) GetChatMemberCount(ctx context.Context, token, chatID string) (int, error) {
	args := m.Called(ctx, token, chatID)
	return args.Int(0), args.Error(1)
}

func (m *MockTelegramAPI) SetWebhook(ctx context.Context, token, url string) error {
	args := m.Called(ctx, token, url)
	return args.Error(0)
}

// MockWelcomeProducer
type MockWelcomeProducer struct {
	mock.Mock
}

func (m *MockWelcomeProducer) PublishWelcome(ctx context.Context, payload queue.WelcomePayload, delay time.Duration) error {
	args := m.Called(ctx, payload, delay)
	return args.Error(0)
}

// MockWelcomeSender
type MockWelcomeSender struct {
	mock.Mock
}

func (m *MockWelcomeSender) Send(ctx context.Context, chatID, userID, channelID string) error {
	args := m.Called(ctx, chatID, userID, channelID)
	return args.Error(0)
}

// MockAlertService
type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) SendScheduledMessageAlert(messageID, channelName, reason string) error {
	args := m.Called(messageID, channelName, reason)
	return args.Error(0)
}
