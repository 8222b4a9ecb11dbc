// Package rabbitmq announces committed purchases on a RabbitMQ topic
// exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// TicketPurchasedMessage is the JSON body of a ticket.purchased message.
type TicketPurchasedMessage struct {
	PurchaseID    string    `json:"purchase_id"`
	EventID       string    `json:"event_id"`
	TicketTypeID  string    `json:"ticket_type_id"`
	TicketType    string    `json:"ticket_type"`
	User          string    `json:"user"`
	Price         int       `json:"price"`
	ReservationID string    `json:"reservation_id,omitempty"`
	PurchasedAt   time.Time `json:"purchased_at"`
}

type Publisher struct {
	conn    *amqp.Connection
	channel channel
	cfg     Config
	log     logrus.FieldLogger
	mu      sync.Mutex
}

// Dial connects to the broker and declares the durable topic exchange.
func Dial(cfg Config, logger logrus.FieldLogger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.WithField("exchange", cfg.Exchange).Info("connected to RabbitMQ")
	return &Publisher{conn: conn, channel: ch, cfg: cfg, log: logger}, nil
}

// TicketPurchased publishes a persistent message for p.
func (p *Publisher) TicketPurchased(ctx context.Context, purchase domain.Purchase) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(newTicketPurchasedMessage(purchase))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(p.cfg.Exchange, p.cfg.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    purchase.ID,
		Timestamp:    purchase.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.cfg.RoutingKey, err)
	}

	p.log.WithFields(logrus.Fields{
		"purchase_id": purchase.ID,
		"event_id":    purchase.EventID,
	}).Debug("published ticket purchased message")
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil {
		p.log.WithError(err).Warn("failed to close RabbitMQ channel")
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func newTicketPurchasedMessage(p domain.Purchase) TicketPurchasedMessage {
	return TicketPurchasedMessage{
		PurchaseID:    p.ID,
		EventID:       p.EventID,
		TicketTypeID:  p.TicketTypeID,
		TicketType:    p.TicketType,
		User:          p.User,
		Price:         p.Price,
		ReservationID: p.ReservationID,
		PurchasedAt:   p.CreatedAt,
	}
}
