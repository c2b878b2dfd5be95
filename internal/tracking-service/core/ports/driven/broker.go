package driven

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ConsumeOptions struct {
	Prefetch     int
	AutoAck      bool
	QueueDurable bool
}

type IFleetBroker interface {
	// PublishJSON publishes the message as JSON to the given exchange and
	// routing key.
	PublishJSON(ctx context.Context, exchange, routingKey string, msg any) error

	// Consume binds a queue to the fleet topic exchange with the given
	// binding key and returns the delivery channel.
	Consume(ctx context.Context, queueName, bindingKey string, opts ConsumeOptions) (<-chan amqp.Delivery, error)

	IsAlive() bool
	Close() error
}

// IEventPublisher is the audience-channel surface the core services use;
// the broker adapter implements it on top of PublishJSON.
type IEventPublisher interface {
	Publish(ctx context.Context, channel string, eventType string, payload any) error
}
