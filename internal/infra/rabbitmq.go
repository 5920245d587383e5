// README: RabbitMQ connection with a single publishing channel and topic exchange.
package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BookingEventsExchange is the topic exchange lifecycle events are published to.
const BookingEventsExchange = "booking.events"

type RabbitMQ struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	mu   sync.Mutex
}

// NewRabbitMQ dials url, opens a channel and declares the durable booking events exchange.
func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(30 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(BookingEventsExchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", BookingEventsExchange, err)
	}
	return &RabbitMQ{conn: conn, ch: ch}, nil
}

// Publish sends a persistent JSON message. amqp channels are not safe for concurrent
// publishing, so calls are serialised.
func (r *RabbitMQ) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn.IsClosed() || r.ch.IsClosed() {
		return fmt.Errorf("rabbitmq: connection is not open")
	}
	return r.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (r *RabbitMQ) Close() error {
	_ = r.ch.Close()
	return r.conn.Close()
}
