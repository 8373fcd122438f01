// AngelaMos | 2026
// events.go

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const TypeOrderPlaced = "order.placed"

var (
	ErrUnknownType  = errors.New("unknown event type")
	ErrBrokerClosed = errors.New("broker connection closed")
)

type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType string, payload any) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}, nil
}

func (e Envelope) Decode(dst any) error {
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

type OrderLine struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type OrderPlaced struct {
	OrderID       string      `json:"orderId"`
	CustomerID    string      `json:"customerId"`
	Email         string      `json:"email"`
	RecipientName string      `json:"recipientName"`
	Items         []OrderLine `json:"items"`
	TotalPrice    float64     `json:"totalPrice"`
	PlacedAt      time.Time   `json:"placedAt"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

type HandlerFunc func(ctx context.Context, e Envelope) error

// Dispatcher routes envelopes to the handler registered for their type.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

func (d *Dispatcher) Handle(eventType string, h HandlerFunc) {
	d.handlers[eventType] = h
}

func (d *Dispatcher) Dispatch(ctx context.Context, e Envelope) error {
	h, ok := d.handlers[e.Type]
	if !ok {
		return fmt.Errorf("dispatch %q: %w", e.Type, ErrUnknownType)
	}
	return h(ctx, e)
}

// Inline hands events straight to a dispatcher in the publishing process.
// It stands in for the broker when events are disabled, so side effects
// such as confirmation mail still happen. Handler failures are logged, not
// returned, matching what a publisher to a real queue would observe.
type Inline struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewInline(d *Dispatcher, logger *slog.Logger) *Inline {
	return &Inline{dispatcher: d, logger: logger}
}

func (p *Inline) Publish(ctx context.Context, eventType string, payload any) error {
	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	if err := p.dispatcher.Dispatch(ctx, env); err != nil {
		p.logger.Error("inline event handler failed",
			"type", eventType,
			"event_id", env.ID,
			"error", err,
		)
	}
	return nil
}

type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
