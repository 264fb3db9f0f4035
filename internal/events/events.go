// Package events publishes inventory transitions to RabbitMQ for
// downstream consumers. Publishing is best effort and never part of the
// scan transaction.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event describes one committed withdraw or return.
type Event struct {
	Type       string    `json:"type"`
	ItemID     uint      `json:"item_id"`
	QRToken    string    `json:"qr_token"`
	Status     string    `json:"status"`
	UserID     uint      `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RoutingKey builds the topic key for an action, e.g. "inventory.withdraw".
func RoutingKey(action string) string {
	return "inventory." + action
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// AMQPPublisher publishes JSON events to a durable topic exchange.
// A closed connection or channel is redialed on the next Publish.
type AMQPPublisher struct {
	url      string
	exchange string
	dial     func(url string) (*amqp.Connection, error)

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialAMQP connects to url and declares exchange.
func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, exchange: exchange, dial: amqp.Dial}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect opens a fresh connection and channel. Callers hold p.mu or own p.
func (p *AMQPPublisher) connect() error {
	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *AMQPPublisher) connected() bool {
	return p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed()
}

// Publish sends evt with its Type as routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected() {
		p.closeLocked()
		if err := p.connect(); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
	}
	return p.ch.PublishWithContext(ctx, p.exchange, evt.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.OccurredAt,
		Body:         body,
	})
}

// Close shuts the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *AMQPPublisher) closeLocked() error {
	var err error
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		err = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
	return err
}
