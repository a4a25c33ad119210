package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	OrdersExchange = "orders_topic"
	KitchenQueue   = "kitchen_queue"

	// kitchenBinding matches every kitchen.<destination> routing key.
	kitchenBinding = "kitchen.#"

	maxDialAttempts = 5
)

// Connection is a RabbitMQ connection and channel that redials on demand.
type Connection struct {
	url string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// Dial connects to url and declares the kitchen topology.
func Dial(url string) (*Connection, error) {
	c := &Connection{url: url}
	if err := c.connect(); err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return c, nil
}

// connect dials with linear backoff. Caller holds c.mu or owns c.
func (c *Connection) connect() error {
	var err error
	for i := 0; i < maxDialAttempts; i++ {
		if err = c.open(); err == nil {
			return nil
		}
		if i < maxDialAttempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			log.Printf("WARNING: rabbitmq connect failed, retrying in %v: %v", wait, err)
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("after %d attempts: %w", maxDialAttempts, err)
}

func (c *Connection) open() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}
	c.conn, c.channel = conn, ch
	return nil
}

func setupTopology(ch *amqp091.Channel) error {
	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s exchange: %w", OrdersExchange, err)
	}
	if _, err := ch.QueueDeclare(KitchenQueue, true, false, false, false, amqp091.Table{
		"x-message-ttl": int32(300000),
	}); err != nil {
		return fmt.Errorf("declare %s queue: %w", KitchenQueue, err)
	}
	if err := ch.QueueBind(KitchenQueue, kitchenBinding, OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", KitchenQueue, err)
	}
	return nil
}

// Channel returns a live channel, redialling if the connection dropped.
func (c *Connection) Channel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.conn.IsClosed() || c.channel == nil || c.channel.IsClosed() {
		c.close()
		if err := c.connect(); err != nil {
			return nil, fmt.Errorf("reconnect to rabbitmq: %w", err)
		}
	}
	return c.channel, nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
