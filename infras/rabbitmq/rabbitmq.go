package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"tablebook/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	prefetchCount = 50
	maxBackoff    = 30 * time.Second
)

var errDeliveriesClosed = errors.New("deliveries channel closed")

// Handler processes one delivery body. An error rejects the delivery without
// requeueing it.
type Handler func(ctx context.Context, body []byte) error

type Client interface {
	Publish(ctx context.Context, queue string, value any) error
	Consume(ctx context.Context, queue string, handler Handler) error
	Close() error
}

type client struct {
	url            string
	initialBackoff time.Duration
	sleep          func(ctx context.Context, d time.Duration) bool

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func New(cfg *config.Config) Client {
	return &client{
		url:            cfg.RabbitMQ.URL,
		initialBackoff: time.Second,
		sleep:          sleep,
	}
}

// publishChannel returns the shared publishing channel, redialing when the
// previous connection dropped.
func (c *client) publishChannel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}

	if c.conn == nil || c.conn.IsClosed() {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
		}

		c.conn = conn
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	c.channel = ch

	return ch, nil
}

func (c *client) Publish(ctx context.Context, queue string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal rabbitmq message: %w", err)
	}

	ch, err := c.publishChannel()
	if err != nil {
		return err
	}

	if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queue, err)
	}

	return nil
}

// Consume keeps a consumer on queue until ctx is done, reconnecting with an
// exponential backoff when the broker goes away.
func (c *client) Consume(ctx context.Context, queue string, handler Handler) error {
	return c.retry(ctx, queue, func(ctx context.Context) error {
		return c.consumeOnce(ctx, queue, handler)
	})
}

func (c *client) retry(ctx context.Context, queue string, consume func(ctx context.Context) error) error {
	backoff := c.initialBackoff

	for {
		err := consume(ctx)
		if ctx.Err() != nil {
			return nil
		}

		log.Error().Err(err).Str("queue", queue).Dur("retry_in", backoff).Msg("rabbitmq consumer stopped, reconnecting")

		if !c.sleep(ctx, backoff) {
			return nil
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

// sleep waits for d and reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *client) consumeOnce(ctx context.Context, queue string, handler Handler) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	defer ch.Close()

	if err = ch.Qos(prefetchCount, 0, false); err != nil {
		log.Warn().Err(err).Msg("failed to set rabbitmq qos")
	}

	if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", queue, err)
	}

	return handleDeliveries(ctx, queue, deliveries, handler)
}

// handleDeliveries acks what handler accepts and drops the rest without
// requeueing. It returns once deliveries is closed.
func handleDeliveries(ctx context.Context, queue string, deliveries <-chan amqp.Delivery, handler Handler) error {
	for delivery := range deliveries {
		if err := handler(ctx, delivery.Body); err != nil {
			log.Error().Err(err).Str("queue", queue).Uint64("tag", delivery.DeliveryTag).Msg("failed to handle rabbitmq delivery")

			if err = delivery.Nack(false, false); err != nil {
				log.Warn().Err(err).Str("queue", queue).Msg("failed to nack rabbitmq delivery")
			}

			continue
		}

		if err := delivery.Ack(false); err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("failed to ack rabbitmq delivery")
		}
	}

	return errDeliveriesClosed
}

func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close rabbitmq connection: %w", err)
	}

	return nil
}
