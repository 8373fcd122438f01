// AngelaMos | 2026
// rabbitmq.go

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/streadway/amqp"

	"github.com/carterperez-dev/bookheaven/internal/config"
)

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
	mu      sync.Mutex
}

func NewClient(cfg config.EventsConfig, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close() //nolint:errcheck // cleanup on channel failure
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()   //nolint:errcheck // cleanup on declare failure
		_ = conn.Close() //nolint:errcheck // cleanup on declare failure
		return nil, fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}

	return &Client{conn: conn, channel: ch, queue: cfg.Queue, logger: logger}, nil
}

func (c *Client) Publish(ctx context.Context, eventType string, payload any) error {
	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish("", c.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Type:         env.Type,
		Timestamp:    env.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Consume feeds deliveries to the dispatcher until ctx is cancelled or the
// delivery channel closes. Failed deliveries are nacked without requeue so
// a poison message cannot loop.
func (c *Client) Consume(ctx context.Context, d *Dispatcher) error {
	c.mu.Lock()
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, d, msg)
		}
	}
}

func (c *Client) handle(ctx context.Context, d *Dispatcher, msg amqp.Delivery) {
	var env Envelope
	err := json.Unmarshal(msg.Body, &env)
	if err == nil {
		err = d.Dispatch(ctx, env)
	}

	if err != nil {
		c.logger.Error("event handling failed",
			"type", env.Type,
			"event_id", env.ID,
			"delivery_tag", msg.DeliveryTag,
			"error", err,
		)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error("nack failed", "delivery_tag", msg.DeliveryTag, "error", nackErr)
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		c.logger.Error("ack failed", "delivery_tag", msg.DeliveryTag, "error", ackErr)
	}
}

func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Ping reports whether the broker connection is still open.
func (c *Client) Ping(context.Context) error {
	if c.conn == nil || c.conn.IsClosed() {
		return ErrBrokerClosed
	}
	return nil
}
