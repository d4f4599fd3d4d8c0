package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SystemLeadID marks events not attached to a real lead (engine activity).
const SystemLeadID = "system"

const (
	EventChannelJoin          = "channel_join"
	EventChannelLeave         = "channel_leave"
	EventScheduledMessageSent = "scheduled_message_sent"
	EventWelcomeMessageSent   = "welcome_message_sent"
	EventInviteLinkGenerated  = "invite_link_generated"
)

// Event is an append-only fact. Never updated or deleted by the service.
type Event struct {
	ID        string                 `json:"id"`
	LeadID    string                 `json:"lead_id"`
	EventType string                 `json:"event_type"`
	EventData map[string]interface{} `json:"event_data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func NewEvent(leadID, eventType string, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		EventType: eventType,
		EventData: data,
		CreatedAt: time.Now(),
	}
}

type EventRepositoryInterface interface {
	Create(ctx context.Context, event *Event) error
}
