package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leadgram/leadgram/internal/entity"
	"github.com/leadgram/leadgram/internal/usecase"
)

func repeatingMessage(repeatType, repeatTime string, days []int, anchor time.Time) *entity.ScheduledMessage {
	return &entity.ScheduledMessage{
		ID:            "msg-1",
		BotID:         "bot-1",
		ChannelID:     "chan-1",
		Message:       "hello",
		ScheduledTime: anchor,
		RepeatType:    repeatType,
		RepeatTime:    repeatTime,
		RepeatDays:    days,
		Status:        entity.MessageStatusPending,
	}
}

func TestDailyFiresOnceAtTargetMinute(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	msg := repeatingMessage(entity.RepeatDaily, "09:00", nil, anchor)

	lastSent := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	// Next day at 09:00 fires.
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	assert.True(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))

	// Same day at 09:00 does not fire again.
	now = time.Date(2024, 1, 1, 9, 0, 30, 0, time.UTC)
	assert.False(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))

	// Wrong minute does not fire.
	now = time.Date(2024, 1, 2, 9, 1, 0, 0, time.UTC)
	assert.False(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))
}

func TestWeeklyRequiresWeekdayAndCooldown(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	// Monday only (weekday index 1).
	msg := repeatingMessage(entity.RepeatWeekly, "10:30", []int{1}, anchor)

	lastSent := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC) // Monday

	// Following Monday at 10:30 fires.
	now := time.Date(2024, 1, 8, 10, 30, 0, 0, time.UTC)
	assert.True(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))

	// Tuesday at 10:30 is not in repeat_days.
	now = time.Date(2024, 1, 9, 10, 30, 0, 0, time.UTC)
	assert.False(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))

	// Same Monday less than 24h after the last send does not fire.
	now = time.Date(2024, 1, 1, 10, 30, 59, 0, time.UTC)
	assert.False(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))
}

func TestMonthlyFiresOnAnchorDayOncePerMonth(t *testing.T) {
	anchor := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	msg := repeatingMessage(entity.RepeatMonthly, "08:00", nil, anchor)

	lastSent := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	// Feb 15 at 08:00 fires.
	now := time.Date(2024, 2, 15, 8, 0, 0, 0, time.UTC)
	assert.True(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))

	// Feb 16 is not the anchor day.
	now = time.Date(2024, 2, 16, 8, 0, 0, 0, time.UTC)
	assert.False(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))

	// Jan 15 again (same month as last send) does not fire.
	now = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	assert.False(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))
}

func TestUnknownRepeatTypeNeverFires(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	msg := repeatingMessage("hourly", "09:00", nil, anchor)

	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	assert.False(t, usecase.ShouldSendRepeatingMessage(msg, anchor, now))
}

func TestMissingRepeatTimeFallsBackToCurrentMinute(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	msg := repeatingMessage(entity.RepeatDaily, "", nil, anchor)

	lastSent := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	// Without repeat_time the minute gate always matches, so only the
	// calendar-day guard applies.
	now := time.Date(2024, 1, 2, 14, 37, 0, 0, time.UTC)
	assert.True(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))

	now = time.Date(2024, 1, 1, 14, 37, 0, 0, time.UTC)
	assert.False(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))
}

func TestMalformedRepeatTimeFallsBackToCurrentMinute(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	msg := repeatingMessage(entity.RepeatDaily, "not-a-time", nil, anchor)

	lastSent := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 2, 11, 11, 0, 0, time.UTC)

	assert.True(t, usecase.ShouldSendRepeatingMessage(msg, lastSent, now))
}
