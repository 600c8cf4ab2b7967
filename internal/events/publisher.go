package events

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits chat events for out-of-process consumers. Delivery
// is fire-and-forget; the broker and the persisted log never depend
// on it.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// NewPublisher connects to RabbitMQ, falling back to a noop publisher
// when AMQP is disabled or unreachable.
func NewPublisher(logger *log.Logger, amqpURL, exchange string) Publisher {
	if amqpURL == "" {
		logger.Println("amqp disabled, events will not be published")
		return noopPublisher{}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		logger.Printf("amqp dial failed, using noop publisher: %v", err)
		return noopPublisher{}
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Printf("amqp channel failed, using noop publisher: %v", err)
		conn.Close()
		return noopPublisher{}
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		logger.Printf("amqp exchange declare failed, using noop publisher: %v", err)
		ch.Close()
		conn.Close()
		return noopPublisher{}
	}

	logger.Printf("amqp connected, exchange %q", exchange)
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
