package queue

import (
	"errors"
	"fmt"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/infrastructure/adapters/queue/kafka"
	"reputation-leaderboard/internal/infrastructure/adapters/queue/rabbitmq"
	"reputation-leaderboard/internal/infrastructure/adapters/queue/redis"
	"reputation-leaderboard/internal/infrastructure/config"
)

// ErrQueueDisabled is returned when no queue provider is configured
var ErrQueueDisabled = errors.New("registration queue is disabled")

// QueueFactory creates queue adapters based on configuration
type QueueFactory struct {
	config *config.Config
}

// NewQueueFactory creates a new queue factory
func NewQueueFactory(cfg *config.Config) *QueueFactory {
	return &QueueFactory{config: cfg}
}

// CreateQueueAdapter creates a queue adapter for provider, falling back to
// the configured provider when empty
func (f *QueueFactory) CreateQueueAdapter(provider string) (ports.RegistrationQueue, error) {
	if provider == "" {
		provider = f.config.Queue.Provider
	}

	switch provider {
	case config.QueueNone:
		return nil, ErrQueueDisabled
	case config.QueueRabbitMQ:
		return rabbitmq.NewAdapter(f.config.Queue.RabbitMQ.URI)
	case config.QueueKafka:
		return kafka.NewAdapter(f.config.Queue.Kafka.Brokers)
	case config.QueueRedis:
		return redis.NewAdapter(
			f.config.Queue.Redis.Addr,
			f.config.Queue.Redis.Password,
			f.config.Queue.Redis.DB,
		)
	default:
		return nil, fmt.Errorf("unsupported queue provider: %s", provider)
	}
}

// GetSupportedProviders returns a list of supported queue providers
func (f *QueueFactory) GetSupportedProviders() []string {
	return []string{config.QueueRabbitMQ, config.QueueKafka, config.QueueRedis}
}
