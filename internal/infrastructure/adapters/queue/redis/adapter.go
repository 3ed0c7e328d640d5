package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/infrastructure/adapters/queue/message"
	"reputation-leaderboard/internal/infrastructure/logger"
	"reputation-leaderboard/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const provider = "redis"

// Adapter implements the RegistrationQueue interface on a Redis stream
type Adapter struct {
	client   *redis.Client
	config   Config
	consumer *Consumer
	closed   bool
	mutex    sync.RWMutex
}

// Config holds Redis configuration
type Config struct {
	Addr          string
	Password      string
	DB            int
	StreamName    string
	ConsumerGroup string
	BlockTime     time.Duration
	MaxLen        int64
}

// Consumer handles message consumption from the stream
type Consumer struct {
	ctx     context.Context
	cancel  context.CancelFunc
	handler ports.RegistrationHandler
	wg      sync.WaitGroup
}

var (
	_ ports.RegistrationQueue = (*Adapter)(nil)
	_ ports.QueueBacklog      = (*Adapter)(nil)
)

// NewAdapter creates a new Redis adapter
func NewAdapter(addr, password string, db int) (*Adapter, error) {
	config := Config{
		Addr:          addr,
		Password:      password,
		DB:            db,
		StreamName:    "leaderboard:registrations",
		ConsumerGroup: "leaderboard-service",
		BlockTime:     5 * time.Second,
		MaxLen:        10000,
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	adapter := &Adapter{
		client: client,
		config: config,
	}

	if err := adapter.ensureConsumerGroup(ctx); err != nil {
		logger.Warning("Failed to create consumer group: %v", err)
	}

	return adapter, nil
}

// ensureConsumerGroup creates the stream and group when missing
func (a *Adapter) ensureConsumerGroup(ctx context.Context) error {
	err := a.client.XGroupCreateMkStream(ctx, a.config.StreamName, a.config.ConsumerGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Provider names the backing broker
func (a *Adapter) Provider() string {
	return provider
}

// PublishRegistration appends a registration to the stream
func (a *Adapter) PublishRegistration(ctx context.Context, registration models.UserRegistration) error {
	if a.isClosed() {
		return fmt.Errorf("connection is closed")
	}

	body, err := message.Encode(message.New(registration))
	if err != nil {
		return err
	}

	err = a.client.XAdd(ctx, &redis.XAddArgs{
		Stream: a.config.StreamName,
		MaxLen: a.config.MaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"message": string(body),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// StartConsumer starts reading the stream through the consumer group
func (a *Adapter) StartConsumer(handler ports.RegistrationHandler) error {
	if a.isClosed() {
		return fmt.Errorf("connection is closed")
	}

	ctx, cancel := context.WithCancel(context.Background())

	a.mutex.Lock()
	a.consumer = &Consumer{
		ctx:     ctx,
		cancel:  cancel,
		handler: handler,
	}
	consumer := a.consumer
	a.mutex.Unlock()

	logger.Success("Redis consumer started, consuming from stream: %s", a.config.StreamName)

	consumer.wg.Add(1)
	go func() {
		defer consumer.wg.Done()
		a.consumeMessages(consumer)
	}()

	return nil
}

func (a *Adapter) consumeMessages(consumer *Consumer) {
	consumerName := fmt.Sprintf("consumer-%d", time.Now().UnixNano())

	for {
		select {
		case <-consumer.ctx.Done():
			return
		default:
		}

		streams, err := a.client.XReadGroup(consumer.ctx, &redis.XReadGroupArgs{
			Group:    a.config.ConsumerGroup,
			Consumer: consumerName,
			Streams:  []string{a.config.StreamName, ">"},
			Count:    10,
			Block:    a.config.BlockTime,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			logger.Error("Failed to read from stream: %v", err)
			time.Sleep(1 * time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				a.handleMessage(consumer.ctx, msg, consumer.handler)
				a.client.XAck(context.Background(), a.config.StreamName, a.config.ConsumerGroup, msg.ID)
			}
		}
	}
}

func (a *Adapter) handleMessage(ctx context.Context, msg redis.XMessage, handler ports.RegistrationHandler) {
	body, ok := msg.Values["message"].(string)
	if !ok {
		logger.Warning("Invalid stream entry %s: missing message field", msg.ID)
		return
	}
	message.Process(ctx, provider, []byte(body), handler)
}

// StopConsumer stops the consumer and waits for the read loop to exit
func (a *Adapter) StopConsumer() error {
	a.mutex.Lock()
	consumer := a.consumer
	a.consumer = nil
	a.mutex.Unlock()

	if consumer != nil {
		consumer.cancel()
		consumer.wg.Wait()
	}
	return nil
}

// IsConnected checks if the Redis connection is active
func (a *Adapter) IsConnected() bool {
	if a.isClosed() {
		return false
	}

	ctx, cancel := utils.TimeoutContext(2 * time.Second)
	defer cancel()

	return a.client.Ping(ctx).Err() == nil
}

// Close closes the Redis connection
func (a *Adapter) Close() error {
	a.mutex.Lock()
	a.closed = true
	a.mutex.Unlock()

	if err := a.StopConsumer(); err != nil {
		logger.Warning("Failed to stop consumer: %v", err)
	}

	return a.client.Close()
}

func (a *Adapter) isClosed() bool {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.closed
}

// Backlog returns the length of the registration stream
func (a *Adapter) Backlog(ctx context.Context) (int64, error) {
	if a.isClosed() {
		return 0, fmt.Errorf("connection is closed")
	}

	info, err := a.client.XInfoStream(ctx, a.config.StreamName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read stream %s: %w", a.config.StreamName, err)
	}
	return info.Length, nil
}
