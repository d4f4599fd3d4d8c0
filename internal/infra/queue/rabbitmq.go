package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName     = "ex.welcome"
	WaitExchangeName = "ex.welcome.wait"
	DLXName          = "ex.dlx" // Dead Letter Exchange

	QueueName     = "q.welcome"
	WaitQueueName = "q.welcome.wait"
	DLQName       = "q.welcome.dlq"

	RoutingKey     = "k.welcome"
	WaitRoutingKey = "k.welcome.wait"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connect failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel failed: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

// setupTopology declares three legs:
//
//	ex.welcome.wait -> q.welcome.wait  (no consumer; per-message TTL holds the
//	                                    welcome delay, then dead-letters into
//	                                    ex.welcome)
//	ex.welcome      -> q.welcome       (consumed by the welcome worker)
//	ex.dlx          -> q.welcome.dlq   (rejected deliveries)
func setupTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(DLQName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	err = ch.QueueBind(DLQName, RoutingKey, DLXName, false, nil)
	if err != nil {
		return err
	}

	err = ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	deliveryArgs := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}

	_, err = ch.QueueDeclare(QueueName, true, false, false, false, deliveryArgs)
	if err != nil {
		return err
	}

	err = ch.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil)
	if err != nil {
		return err
	}

	err = ch.ExchangeDeclare(WaitExchangeName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	waitArgs := amqp.Table{
		"x-dead-letter-exchange":    ExchangeName,
		"x-dead-letter-routing-key": RoutingKey,
	}

	_, err = ch.QueueDeclare(WaitQueueName, true, false, false, false, waitArgs)
	if err != nil {
		return err
	}

	return ch.QueueBind(WaitQueueName, WaitRoutingKey, WaitExchangeName, false, nil)
}
