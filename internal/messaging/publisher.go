package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/umami-pos/api/internal/enum"
	"github.com/umami-pos/api/internal/order"
)

const publishTimeout = 5 * time.Second

// Channel is the part of an AMQP channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// ChannelSource hands out a live channel. Satisfied by *Connection via
// ConnectionSource.
type ChannelSource func() (Channel, error)

// ConnectionSource adapts a Connection to a ChannelSource.
func ConnectionSource(c *Connection) ChannelSource {
	return func() (Channel, error) {
		ch, err := c.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}
}

// TicketItem is one line of a kitchen ticket.
type TicketItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// KitchenTicket is the message the kitchen consumes for a new order.
type KitchenTicket struct {
	OrderID     string       `json:"order_id"`
	Destination string       `json:"destination"`
	Items       []TicketItem `json:"items"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewKitchenTicket builds the ticket for o.
func NewKitchenTicket(o order.Order) KitchenTicket {
	items := make([]TicketItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = TicketItem{Name: it.Name, Quantity: it.Quantity}
	}
	return KitchenTicket{
		OrderID:     o.ID,
		Destination: o.Destination.Label(),
		Items:       items,
		CreatedAt:   o.CreatedAt,
	}
}

// RoutingKey returns kitchen.<table.N|takeaway> for o.
func RoutingKey(o order.Order) string {
	return "kitchen." + o.Destination.RoutingKey()
}

// Publisher sends kitchen tickets for newly placed orders.
type Publisher struct {
	channels ChannelSource
}

func NewPublisher(channels ChannelSource) *Publisher {
	return &Publisher{channels: channels}
}

// PublishTicket publishes the kitchen ticket for o.
func (p *Publisher) PublishTicket(ctx context.Context, o order.Order) error {
	body, err := json.Marshal(NewKitchenTicket(o))
	if err != nil {
		return fmt.Errorf("marshal kitchen ticket: %w", err)
	}

	ch, err := p.channels()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, OrdersExchange, RoutingKey(o), false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    o.ID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish kitchen ticket: %w", err)
	}
	return nil
}

// Notify implements order.Notifier. Only new orders reach the kitchen;
// failures are logged and never fail the order.
func (p *Publisher) Notify(ctx context.Context, eventType string, o order.Order) {
	if eventType != enum.EventOrderCreated {
		return
	}
	if err := p.PublishTicket(ctx, o); err != nil {
		log.Printf("ERROR: kitchen ticket for order %s: %v", o.ID, err)
	}
}
