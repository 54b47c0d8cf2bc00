package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends saved-event activity to the broker.
type Publisher interface {
	PublishSavedEventActivity(ctx context.Context, a SavedEventActivity) error
}

// NopPublisher drops every message.  It is used when no broker is
// configured.
type NopPublisher struct{}

func (NopPublisher) PublishSavedEventActivity(context.Context, SavedEventActivity) error { return nil }

// AMQPPublisher publishes to RabbitMQ, opening a connection per message.
type AMQPPublisher struct {
	URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// PublishSavedEventActivity marshals a and publishes it as a persistent
// message on ActivityQueueName.
func (p *AMQPPublisher) PublishSavedEventActivity(ctx context.Context, a SavedEventActivity) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareActivityQueue(ch); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         a.Type,
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", ActivityQueueName, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// declareActivityQueue is idempotent; the queue is durable so messages
// survive broker restarts.
func declareActivityQueue(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(ActivityQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}
