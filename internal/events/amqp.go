package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/streadway/amqp"
)

// Exchange is the topic exchange store events are published to.
const Exchange = "multistore.events"

// Broker is the subset of the RabbitMQ client events need.
type Broker interface {
	Publish(exchange, routingKey string, body []byte) error
	Consume(queueName, exchange string, routingKeys []string, handler func(msg amqp.Delivery) error) error
}

// AMQPPublisher publishes events to RabbitMQ, routed by event type.
type AMQPPublisher struct {
	broker Broker
}

// NewAMQPPublisher creates a publisher over a broker.
func NewAMQPPublisher(broker Broker) *AMQPPublisher {
	return &AMQPPublisher{broker: broker}
}

// Publish marshals evt and sends it with its type as routing key.
func (p *AMQPPublisher) Publish(_ context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", evt.ID, err)
	}
	return p.broker.Publish(Exchange, evt.Type, body)
}

// Consume binds queue to every event type and dispatches deliveries to router.
func Consume(broker Broker, queue string, router *Router) error {
	return broker.Consume(queue, Exchange, Types, func(msg amqp.Delivery) error {
		var evt Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		return router.Dispatch(context.Background(), evt)
	})
}
