package notify

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

const (
	exchangeName = "geofence.events"
	queueName    = "geofence_notifications"
)

// amqpChannel is the subset of *amqp.Channel used for publishing.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQNotifier publishes notifications to a fanout exchange.
type RabbitMQNotifier struct {
	ch amqpChannel
}

// NewRabbitMQNotifier declares the exchange and queue on conn.
func NewRabbitMQNotifier(conn *amqp.Connection) (*RabbitMQNotifier, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &RabbitMQNotifier{ch: ch}, nil
}

// DialRabbitMQ connects to the broker at url.
func DialRabbitMQ(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connect: %w", err)
	}
	return conn, nil
}

func (n *RabbitMQNotifier) Name() string { return "rabbitmq" }

func (n *RabbitMQNotifier) Notify(ctx context.Context, msg geofence.Notification) error {
	body, err := encodeEvent(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return n.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.Result.CycleID,
		Body:         body,
	})
}

// Close releases the channel; the connection is owned by the caller.
func (n *RabbitMQNotifier) Close() error {
	return n.ch.Close()
}
