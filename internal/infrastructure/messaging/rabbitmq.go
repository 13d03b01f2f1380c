package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sangkips/tablebill-api/pkg/notify"
)

const publishTimeout = 5 * time.Second

// channel is the slice of *amqp.Channel the publisher needs
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// envelope is what downstream consumers (kitchen board, POS relays) receive
type envelope struct {
	Recipient string       `json:"recipient"`
	Event     notify.Event `json:"event"`
}

// RabbitMQPublisher fans notification events out through a fanout exchange.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	ch       channel
	closer   func() error
	exchange string
	logger   *slog.Logger

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewRabbitMQPublisher dials url and declares the durable fanout exchange.
func NewRabbitMQPublisher(url, exchange string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare exchange %s: %w", exchange, err)
	}

	p := newPublisher(ch, exchange, logger)
	p.conn = conn
	p.closer = ch.Close
	logger.Info("rabbitmq publisher connected", "exchange", exchange)
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *slog.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{ch: ch, exchange: exchange, logger: logger}
}

// Publish sends ev in the background. Failures are logged, never returned.
func (p *RabbitMQPublisher) Publish(ctx context.Context, recipient string, ev notify.Event) {
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now()
	}
	body, err := json.Marshal(envelope{Recipient: recipient, Event: ev})
	if err != nil {
		p.logger.Error("encode notification", "error", err, "type", ev.Type)
		return
	}

	ctx = context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		p.mu.Lock()
		err := p.ch.PublishWithContext(ctx,
			p.exchange, // exchange
			ev.Type,    // routing key, ignored by fanout but useful to bind-by-type relays
			false,      // mandatory
			false,      // immediate
			amqp.Publishing{
				DeliveryMode: amqp.Persistent,
				ContentType:  "application/json",
				Timestamp:    ev.SentAt,
				Body:         body,
			})
		p.mu.Unlock()
		if err != nil {
			p.logger.Warn("publish notification failed", "error", err, "type", ev.Type, "recipient", recipient)
		}
	}()
}

// Close waits for in-flight publishes then closes the channel and connection.
func (p *RabbitMQPublisher) Close() {
	p.wg.Wait()
	if p.closer != nil {
		p.closer()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
