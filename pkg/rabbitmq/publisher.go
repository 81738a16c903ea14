package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const ExchangeKind = "topic"

// Routing keys of the domain events
const (
	ReservationBooked    = "reservation.booked"
	ReservationCancelled = "reservation.cancelled"
	ReservationCheckedIn = "reservation.checked_in"
	ReservationNoShow    = "reservation.no_show"
	ClassUpdated         = "class.updated"
	ClassDeleted         = "class.deleted"
	MemberDeleted        = "member.deleted"
)

// EventPublisher is what services depend on
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Envelope wraps every event body
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher reconnects lazily: a closed connection or channel is re-dialed
// on the next Publish, so a broker restart only loses events sent while it was down.
type Publisher struct {
	mu       sync.Mutex
	url      string
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *zap.Logger
}

const dialTimeout = 5 * time.Second

func NewPublisher(url, exchange string, log *zap.Logger) (*Publisher, error) {
	p := &Publisher{
		url:      url,
		exchange: exchange,
		log:      log.With(zap.String("component", "rabbitmq")),
	}

	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect opens what is missing or closed. Callers hold p.mu, except NewPublisher.
func (p *Publisher) connect() error {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.DialConfig(p.url, amqp.Config{
			Locale: "en_US",
			Dial:   amqp.DefaultDial(dialTimeout),
		})
		if err != nil {
			return fmt.Errorf("rabbitmq dial: %w", err)
		}
		p.conn = conn
		p.channel = nil
	}

	if p.channel == nil || p.channel.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			return fmt.Errorf("rabbitmq channel: %w", err)
		}

		if err := ch.ExchangeDeclare(p.exchange, ExchangeKind, true, false, false, false, nil); err != nil {
			ch.Close()
			return fmt.Errorf("rabbitmq exchange declare: %w", err)
		}
		p.channel = ch
	}

	return nil
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(Envelope{
		Type:       routingKey,
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	reconnect := p.conn == nil || p.conn.IsClosed() || p.channel == nil || p.channel.IsClosed()
	if err := p.connect(); err != nil {
		return err
	}
	if reconnect {
		p.log.Info("Reconnected to broker", zap.String("exchange", p.exchange))
	}

	if err := p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.log.Debug("Event published",
		zap.String("exchange", p.exchange),
		zap.String("routing_key", routingKey),
	)
	return nil
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Noop drops every event, used when no broker is configured
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
