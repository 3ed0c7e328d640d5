package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/infrastructure/adapters/queue/message"
	"reputation-leaderboard/internal/infrastructure/logger"

	"github.com/segmentio/kafka-go"
)

const provider = "kafka"

// Adapter implements the RegistrationQueue interface for Apache Kafka
type Adapter struct {
	config   Config
	writer   *kafka.Writer
	mutex    sync.RWMutex
	closed   bool
	consumer *Consumer
}

// Config holds Kafka configuration
type Config struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	BatchSize     int
	BatchTimeout  time.Duration
}

// Consumer handles message consumption
type Consumer struct {
	reader  *kafka.Reader
	handler ports.RegistrationHandler
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ ports.RegistrationQueue = (*Adapter)(nil)

// NewAdapter creates a new Kafka adapter
func NewAdapter(brokers []string) (*Adapter, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}

	config := Config{
		Brokers:       brokers,
		Topic:         "leaderboard-registrations",
		ConsumerGroup: "leaderboard-service",
		BatchSize:     100,
		BatchTimeout:  10 * time.Millisecond,
	}

	adapter := &Adapter{config: config}
	adapter.writer = &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              config.BatchSize,
		BatchTimeout:           config.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}

	return adapter, nil
}

func (a *Adapter) setupReader() *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     a.config.Brokers,
		Topic:       a.config.Topic,
		GroupID:     a.config.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		MaxWait:     1 * time.Second,
		StartOffset: kafka.FirstOffset,
	})
}

// Provider names the backing broker
func (a *Adapter) Provider() string {
	return provider
}

// PublishRegistration writes a registration keyed by wallet address
func (a *Adapter) PublishRegistration(ctx context.Context, registration models.UserRegistration) error {
	if a.isClosed() {
		return fmt.Errorf("connection is closed")
	}

	m := message.New(registration)
	body, err := message.Encode(m)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(registration.WalletAddress),
		Value: body,
		Headers: []kafka.Header{
			{Key: "message_id", Value: []byte(m.ID)},
			{Key: "type", Value: []byte(m.Type)},
		},
		Time: time.Now(),
	}

	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// StartConsumer starts consuming the registration topic
func (a *Adapter) StartConsumer(handler ports.RegistrationHandler) error {
	if a.isClosed() {
		return fmt.Errorf("connection is closed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	consumer := &Consumer{
		reader:  a.setupReader(),
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}

	a.mutex.Lock()
	a.consumer = consumer
	a.mutex.Unlock()

	logger.Success("Kafka consumer started, consuming from topic: %s", a.config.Topic)

	consumer.wg.Add(1)
	go func() {
		defer consumer.wg.Done()
		a.consumeMessages(consumer)
	}()

	return nil
}

func (a *Adapter) consumeMessages(consumer *Consumer) {
	for {
		msg, err := consumer.reader.FetchMessage(consumer.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("Failed to fetch message: %v", err)
			continue
		}

		message.Process(consumer.ctx, provider, msg.Value, consumer.handler)

		if err := consumer.reader.CommitMessages(consumer.ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Failed to commit message: %v", err)
		}
	}
}

// StopConsumer stops the consumer and closes its reader
func (a *Adapter) StopConsumer() error {
	a.mutex.Lock()
	consumer := a.consumer
	a.consumer = nil
	a.mutex.Unlock()

	if consumer == nil {
		return nil
	}

	consumer.cancel()
	consumer.wg.Wait()
	if err := consumer.reader.Close(); err != nil {
		return fmt.Errorf("failed to close consumer reader: %w", err)
	}
	return nil
}

// IsConnected reports whether the adapter is open. kafka-go dials lazily,
// so there is no live connection to probe.
func (a *Adapter) IsConnected() bool {
	return !a.isClosed()
}

// Close closes all connections and resources
func (a *Adapter) Close() error {
	a.mutex.Lock()
	a.closed = true
	a.mutex.Unlock()

	if err := a.StopConsumer(); err != nil {
		logger.Warning("Failed to stop consumer: %v", err)
	}

	return a.writer.Close()
}

func (a *Adapter) isClosed() bool {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.closed
}
