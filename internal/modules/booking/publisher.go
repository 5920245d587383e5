// README: Lifecycle event publishing.
package booking

import (
	"context"
	"encoding/json"
	"fmt"
)

// EventPublisher receives every successful transition.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

// MessagePublisher is the broker side of AMQPPublisher (infra.RabbitMQ in production).
type MessagePublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// AMQPPublisher encodes events as JSON and routes them by target state,
// e.g. "booking.picked_up".
type AMQPPublisher struct {
	mq       MessagePublisher
	exchange string
}

func NewAMQPPublisher(mq MessagePublisher, exchange string) *AMQPPublisher {
	return &AMQPPublisher{mq: mq, exchange: exchange}
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode booking event: %w", err)
	}
	return p.mq.Publish(ctx, p.exchange, RoutingKey(e.ToState), body)
}

func RoutingKey(s State) string {
	return "booking." + string(s)
}
