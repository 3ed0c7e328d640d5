package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/infrastructure/adapters/queue/message"
	"reputation-leaderboard/internal/infrastructure/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const provider = "rabbitmq"

// Adapter implements the RegistrationQueue interface for RabbitMQ
type Adapter struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  Config
	closed  bool
	mutex   sync.RWMutex
	wg      sync.WaitGroup
}

// Config holds RabbitMQ configuration
type Config struct {
	URI           string
	QueueName     string
	Exchange      string
	RoutingKey    string
	ConsumerTag   string
	PrefetchCount int
}

var _ ports.RegistrationQueue = (*Adapter)(nil)

// NewAdapter creates a new RabbitMQ adapter
func NewAdapter(uri string) (*Adapter, error) {
	config := Config{
		URI:           uri,
		QueueName:     "leaderboard_registrations",
		Exchange:      "",
		RoutingKey:    "leaderboard_registrations",
		ConsumerTag:   "leaderboard_consumer",
		PrefetchCount: 10,
	}

	adapter := &Adapter{config: config}

	if err := adapter.connect(); err != nil {
		return nil, err
	}

	if err := adapter.setupQueue(); err != nil {
		adapter.conn.Close()
		return nil, fmt.Errorf("failed to setup queue: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) connect() error {
	var err error

	a.conn, err = amqp.Dial(a.config.URI)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	a.channel, err = a.conn.Channel()
	if err != nil {
		a.conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := a.channel.Qos(a.config.PrefetchCount, 0, false); err != nil {
		a.conn.Close()
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	return nil
}

func (a *Adapter) setupQueue() error {
	_, err := a.channel.QueueDeclare(
		a.config.QueueName, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return nil
}

// Provider names the backing broker
func (a *Adapter) Provider() string {
	return provider
}

// PublishRegistration publishes a registration without waiting for a reply
func (a *Adapter) PublishRegistration(ctx context.Context, registration models.UserRegistration) error {
	if a.isClosed() {
		return fmt.Errorf("connection is closed")
	}

	m := message.New(registration)
	body, err := message.Encode(m)
	if err != nil {
		return err
	}

	err = a.channel.PublishWithContext(
		ctx,
		a.config.Exchange,   // exchange
		a.config.RoutingKey, // routing key
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			MessageId:    m.ID,
			Type:         m.Type,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// StartConsumer starts consuming messages from the queue
func (a *Adapter) StartConsumer(handler ports.RegistrationHandler) error {
	if a.isClosed() {
		return fmt.Errorf("connection is closed")
	}

	msgs, err := a.channel.Consume(
		a.config.QueueName,   // queue
		a.config.ConsumerTag, // consumer
		false,                // auto-ack
		false,                // exclusive
		false,                // no-local
		false,                // no-wait
		nil,                  // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Success("RabbitMQ consumer started, waiting for messages on queue: %s", a.config.QueueName)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for msg := range msgs {
			a.handleMessage(msg, handler)
		}
	}()

	return nil
}

func (a *Adapter) handleMessage(msg amqp.Delivery, handler ports.RegistrationHandler) {
	message.Process(context.Background(), provider, msg.Body, handler)

	if err := msg.Ack(false); err != nil {
		logger.Error("Failed to ack message %s: %v", msg.MessageId, err)
	}
}

// StopConsumer cancels the consumer and waits for in-flight deliveries
func (a *Adapter) StopConsumer() error {
	if a.channel == nil || a.channel.IsClosed() {
		return nil
	}
	if err := a.channel.Cancel(a.config.ConsumerTag, false); err != nil {
		return fmt.Errorf("failed to cancel consumer: %w", err)
	}
	a.wg.Wait()
	return nil
}

// IsConnected checks if the connection is active
func (a *Adapter) IsConnected() bool {
	return !a.isClosed() && a.conn != nil && !a.conn.IsClosed()
}

// Close closes the channel and connection
func (a *Adapter) Close() error {
	a.mutex.Lock()
	a.closed = true
	a.mutex.Unlock()

	if err := a.StopConsumer(); err != nil {
		logger.Warning("Failed to stop consumer: %v", err)
	}

	if a.channel != nil {
		if err := a.channel.Close(); err != nil {
			logger.Warning("Failed to close channel: %v", err)
		}
	}

	if a.conn != nil && !a.conn.IsClosed() {
		if err := a.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	return nil
}

func (a *Adapter) isClosed() bool {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.closed
}
