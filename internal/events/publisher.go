package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Envelope wraps every published payload.
type Envelope struct {
	EventID    uuid.UUID       `json:"eventId"`
	EventType  string          `json:"eventType"`
	Version    int             `json:"version"`
	Producer   string          `json:"producer"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher submits orders by publishing a cart-checked-out event; the order
// service consumes it asynchronously, so the confirmation only carries the order id.
type Publisher struct {
	ch  channel
	now func() time.Time
}

var _ port.OrderSubmitter = (*Publisher)(nil)

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("conn.Channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declareEventsExchange: %w", err)
	}

	return newPublisher(ch), nil
}

func newPublisher(ch channel) *Publisher {
	return &Publisher{ch: ch, now: time.Now}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderConfirmation, error) {
	env, err := newEnvelope(req, p.now().UTC())
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("newEnvelope: %w", err)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("json.Marshal: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, EventsExchange, CartCheckedOutRoutingKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.EventID.String(),
		CorrelationId: req.ID.String(),
		Timestamp:     env.OccurredAt,
		Type:          CartCheckedOutEventType,
		Body:          body,
	})
	if err != nil {
		return domain.OrderConfirmation{}, fmt.Errorf("ch.PublishWithContext: %w", err)
	}

	return domain.OrderConfirmation{OrderID: req.ID.String(), Status: "submitted"}, nil
}

func newEnvelope(req domain.OrderRequest, now time.Time) (Envelope, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("json.Marshal: %w", err)
	}

	return Envelope{
		EventID:    uuid.New(),
		EventType:  CartCheckedOutEventType,
		Version:    1,
		Producer:   producerName,
		OccurredAt: now,
		Payload:    payload,
	}, nil
}
