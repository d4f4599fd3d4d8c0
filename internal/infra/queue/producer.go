package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// WelcomePayload carries only identifiers. The consumer re-resolves
// channel/bot/lead state at fire time so late edits are honored.
type WelcomePayload struct {
	EntryID   string `json:"entry_id"`
	ChannelID string `json:"channel_id"`
	ChatID    string `json:"chat_id"`
	UserID    string `json:"user_id"`
}

type WelcomeProducerInterface interface {
	PublishWelcome(ctx context.Context, payload WelcomePayload, delay time.Duration) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

// PublishWelcome routes a deferred send through the wait queue with a
// per-message TTL equal to the welcome delay. Zero delay goes straight to
// the delivery queue.
func (p *RabbitMQProducer) PublishWelcome(ctx context.Context, payload WelcomePayload, delay time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal welcome payload: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}

	exchange, key := ExchangeName, RoutingKey
	if delay > 0 {
		exchange, key = WaitExchangeName, WaitRoutingKey
		publishing.Expiration = strconv.FormatInt(delay.Milliseconds(), 10)
	}

	if err := p.Ch.PublishWithContext(ctx, exchange, key, false, false, publishing); err != nil {
		return fmt.Errorf("publish welcome: %w", err)
	}

	return nil
}
