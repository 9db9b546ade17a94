// Package broker hides the event transport behind one interface. BROKER_DRIVER
// selects kafka, rabbitmq or none.
package broker

//go:generate go run go.uber.org/mock/mockgen -source=./broker.go -destination=./mocks/broker_mock.go -package=mocks

import (
	"context"
	"fmt"

	"tablebook/config"
	"tablebook/infras/kafka"
	"tablebook/infras/rabbitmq"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const (
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"
	DriverNone     = "none"
)

// Handler receives the raw JSON body of one event.
type Handler func(ctx context.Context, body []byte) error

type Broker interface {
	Publish(ctx context.Context, key string, event any) error
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}

func New(cfg *config.Config) Broker {
	topic := cfg.Broker.Topic

	switch cfg.Broker.Driver {
	case DriverKafka:
		return NewKafka(kafka.New(cfg), topic)
	case DriverRabbitMQ:
		return NewRabbitMQ(rabbitmq.New(cfg), topic)
	case DriverNone, "":
		return Noop{}
	default:
		log.Warn().Str("driver", cfg.Broker.Driver).Msg("unknown broker driver, events are dropped")

		return Noop{}
	}
}

type kafkaBroker struct {
	client kafka.Client
	topic  string
}

func NewKafka(client kafka.Client, topic string) Broker {
	return &kafkaBroker{client: client, topic: topic}
}

func (b *kafkaBroker) Publish(ctx context.Context, key string, event any) error {
	if err := b.client.SendMessages(ctx, b.topic, kafka.Message{Key: key, Value: event}); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (b *kafkaBroker) Subscribe(ctx context.Context, handler Handler) error {
	return b.client.Consume(ctx, b.topic, func(ctx context.Context, message kafkaGo.Message) error { //nolint:wrapcheck
		return handler(ctx, message.Value)
	})
}

func (b *kafkaBroker) Close() error {
	return b.client.Close() //nolint:wrapcheck
}

type rabbitBroker struct {
	client rabbitmq.Client
	queue  string
}

func NewRabbitMQ(client rabbitmq.Client, queue string) Broker {
	return &rabbitBroker{client: client, queue: queue}
}

// Publish ignores key: a single durable queue keeps delivery order.
func (b *rabbitBroker) Publish(ctx context.Context, _ string, event any) error {
	if err := b.client.Publish(ctx, b.queue, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (b *rabbitBroker) Subscribe(ctx context.Context, handler Handler) error {
	return b.client.Consume(ctx, b.queue, rabbitmq.Handler(handler)) //nolint:wrapcheck
}

func (b *rabbitBroker) Close() error {
	return b.client.Close() //nolint:wrapcheck
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(_ context.Context, _ string, _ any) error { return nil }

func (Noop) Subscribe(ctx context.Context, _ Handler) error {
	<-ctx.Done()

	return nil
}

func (Noop) Close() error { return nil }
