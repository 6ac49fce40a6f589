// Package service holds outbound integrations used by the HTTP layer.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/yamdb/internal/queue"
)

// CodePublisher publishes confirmation-code events to a durable RabbitMQ
// queue.  Each call dials its own connection; code requests are rare and
// short-lived connections keep the publisher free of reconnect logic.
type CodePublisher struct {
	URL   string
	Queue string
}

// NewCodePublisher returns a publisher for the given broker URL and queue.
func NewCodePublisher(url, queueName string) *CodePublisher {
	return &CodePublisher{URL: url, Queue: queueName}
}

// PublishConfirmationCode marshals ev and publishes it as a persistent
// message.  Errors are logged and returned; the caller decides whether the
// request can still succeed.
func (p *CodePublisher) PublishConfirmationCode(ctx context.Context, ev queue.ConfirmationCodeEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: dial failed")
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: channel open failed")
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		log.Error().Err(err).Str("queue", p.Queue).Msg("rabbitmq: queue declare failed")
		return fmt.Errorf("declare queue: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		log.Error().Err(err).Str("queue", p.Queue).Msg("rabbitmq: publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
