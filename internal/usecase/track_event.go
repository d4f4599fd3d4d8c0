package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/leadgram/leadgram/internal/entity"
)

type TrackEventInput struct {
	Event     string                 `json:"event"`
	LeadID    string                 `json:"lead_id,omitempty"`
	ChannelID string                 `json:"channel_id"`
	APIKey    string                 `json:"api_key"`
	URL       string                 `json:"url,omitempty"`
	Referrer  string                 `json:"referrer,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`

	// Visitor identity from the tracking cookie, set by the handler.
	Email  string `json:"-"`
	Source string `json:"-"`
}

type FacebookEventInput struct {
	EventName string                 `json:"event_name"`
	EventData map[string]interface{} `json:"event_data,omitempty"`

	// Visitor identity from the tracking cookie, set by the handler.
	Email string `json:"-"`
}

type InviteInput struct {
	APIKey    string `json:"api_key"`
	ChannelID string `json:"channel_id"`
	LeadID    string `json:"lead_id,omitempty"`
}

// TrackEventUseCase is the browser-pixel sink. It shares the Event Store
// with the webhook pipeline and resolves visitors into leads by email.
type TrackEventUseCase struct {
	ChannelRepo entity.ChannelRepositoryInterface
	BotRepo     entity.BotRepositoryInterface
	LeadRepo    entity.LeadRepositoryInterface
	EventRepo   entity.EventRepositoryInterface
}

func NewTrackEventUseCase(
	channelRepo entity.ChannelRepositoryInterface,
	botRepo entity.BotRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	eventRepo entity.EventRepositoryInterface,
) *TrackEventUseCase {
	return &TrackEventUseCase{
		ChannelRepo: channelRepo,
		BotRepo:     botRepo,
		LeadRepo:    leadRepo,
		EventRepo:   eventRepo,
	}
}

func (uc *TrackEventUseCase) Execute(ctx context.Context, input TrackEventInput) (string, error) {
	if input.Event == "" || input.ChannelID == "" || input.APIKey == "" {
		return "", ErrMissingParameters
	}

	if !validAPIKey(input.APIKey, input.ChannelID) {
		return "", ErrInvalidAPIKey
	}

	channel, err := uc.ChannelRepo.FindByID(ctx, input.ChannelID)
	if err != nil {
		return "", ErrChannelNotFound
	}
	if !channel.TrackingEnabled {
		return "", ErrTrackingDisabled
	}

	leadID := input.LeadID
	email := normalizeEmail(input.Email)

	if leadID == "" && isValidEmail(email) {
		lead, err := uc.LeadRepo.FindByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("lookup lead by email: %w", err)
		}

		if lead != nil {
			leadID = lead.ID
		} else {
			lead = entity.NewLead()
			lead.Email = email
			lead.Source = leadSource(input)
			lead.ChannelID = input.ChannelID

			if err := uc.LeadRepo.Create(ctx, lead); err != nil {
				return "", fmt.Errorf("create lead: %w", err)
			}
			leadID = lead.ID
		}
	}

	// Anonymous visitors still produce events, under a temporary id.
	if leadID == "" {
		leadID = fmt.Sprintf("temp_%d_%06d", time.Now().UnixMilli(), rand.Intn(1000000))
	}

	data := map[string]interface{}{
		"url":        input.URL,
		"referrer":   input.Referrer,
		"user_agent": input.UserAgent,
		"timestamp":  input.Timestamp,
		"channel_id": input.ChannelID,
	}
	for k, v := range input.Data {
		data[k] = v
	}

	event := entity.NewEvent(leadID, input.Event, data)
	if err := uc.EventRepo.Create(ctx, event); err != nil {
		return "", fmt.Errorf("create tracking event: %w", err)
	}

	return leadID, nil
}

// GenerateInvite returns the channel's public join link and records the
// handout when a lead is known.
func (uc *TrackEventUseCase) GenerateInvite(ctx context.Context, input InviteInput) (string, error) {
	if input.APIKey == "" || input.ChannelID == "" {
		return "", ErrMissingParameters
	}

	if !validAPIKey(input.APIKey, input.ChannelID) {
		return "", ErrInvalidAPIKey
	}

	channel, err := uc.ChannelRepo.FindByID(ctx, input.ChannelID)
	if err != nil {
		return "", ErrChannelNotFound
	}

	if _, err := uc.BotRepo.FindByID(ctx, channel.BotID); err != nil {
		return "", ErrBotNotFound
	}

	inviteLink := "https://t.me/" + strings.TrimPrefix(channel.Username, "@")

	if input.LeadID != "" {
		event := entity.NewEvent(input.LeadID, entity.EventInviteLinkGenerated, map[string]interface{}{
			"channel_id":  input.ChannelID,
			"invite_link": inviteLink,
		})
		if err := uc.EventRepo.Create(ctx, event); err != nil {
			return "", fmt.Errorf("create invite event: %w", err)
		}
	}

	return inviteLink, nil
}

// TrackFacebookEvent records a pixel conversion under the fb_ prefix. Only
// identified leads produce events; anonymous visitors are dropped.
func (uc *TrackEventUseCase) TrackFacebookEvent(ctx context.Context, input FacebookEventInput) error {
	if input.EventName == "" {
		return ErrMissingParameters
	}

	email := normalizeEmail(input.Email)
	if !isValidEmail(email) {
		return ErrLeadNotFound
	}

	lead, err := uc.LeadRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup lead by email: %w", err)
	}
	if lead == nil {
		return ErrLeadNotFound
	}

	event := entity.NewEvent(lead.ID, "fb_"+input.EventName, input.EventData)
	if err := uc.EventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create facebook event: %w", err)
	}

	return nil
}

// Keys are minted as "<channel prefix>-<random>"; checking the prefix
// avoids a lookup on the hot tracking path.
func validAPIKey(apiKey, channelID string) bool {
	prefix := channelID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return strings.Contains(apiKey, prefix)
}

func leadSource(input TrackEventInput) string {
	if input.Source != "" {
		return input.Source
	}
	if input.Referrer != "" {
		return input.Referrer
	}
	return "unknown"
}
