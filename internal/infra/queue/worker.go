package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// WelcomeDispatcher is the contract the worker drives (SendWelcomeUseCase).
type WelcomeDispatcher interface {
	Deliver(ctx context.Context, entryID string) error
}

type Worker struct {
	Channel    *amqp.Channel
	Dispatcher WelcomeDispatcher
}

func NewWorker(ch *amqp.Channel, dispatcher WelcomeDispatcher) *Worker {
	return &Worker{
		Channel:    ch,
		Dispatcher: dispatcher,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack (manual is safer)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		log.Fatalf("❌ [WORKER] Failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload WelcomePayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] Invalid JSON: %s", err)
				// Poison message. Reject without requeue so it lands in the DLQ.
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] Welcome due: entry=%s channel=%s", payload.EntryID, payload.ChannelID)

			if err := w.Dispatcher.Deliver(context.Background(), payload.EntryID); err != nil {
				log.Printf("❌ [WORKER] Welcome delivery failed: %s", err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Welcome worker waiting on queue '%s'", queueName)
	<-forever
}
