package ports

import (
	"context"

	"reputation-leaderboard/internal/domain/models"
)

// RegistrationQueue defines the interface for the member registration queue
type RegistrationQueue interface {
	// Producer operations
	PublishRegistration(ctx context.Context, registration models.UserRegistration) error

	// Consumer operations
	StartConsumer(handler RegistrationHandler) error
	StopConsumer() error

	// Connection management
	Provider() string
	Close() error
	IsConnected() bool
}

// QueueBacklog is implemented by queues that can report how many
// registrations are stored on the broker
type QueueBacklog interface {
	Backlog(ctx context.Context) (int64, error)
}

// RegistrationHandler handles registration messages taken off the queue
type RegistrationHandler interface {
	HandleRegistration(ctx context.Context, registration models.UserRegistration) models.RegistrationResult
}
