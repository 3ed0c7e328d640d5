// Package message is the envelope shared by every registration queue
// provider, plus the decode and dispatch path their consumers run.
package message

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/infrastructure/logger"
	"reputation-leaderboard/internal/infrastructure/metrics"
	"reputation-leaderboard/pkg/utils"
)

// TypeRegisterUser marks a member registration
const TypeRegisterUser = "REGISTER_USER"

// Outcome labels for the queue message counter
const (
	OutcomeRegistered = "registered"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
	OutcomeMalformed  = "malformed"
)

// Message is the registration envelope written to every provider
type Message struct {
	ID      string                  `json:"id"`
	Type    string                  `json:"type"`
	Data    models.UserRegistration `json:"data"`
	Headers map[string]string       `json:"headers,omitempty"`
}

// New wraps a registration in an envelope with a fresh message id
func New(registration models.UserRegistration) Message {
	id := utils.GenerateMessageID(registration.Username)
	return Message{
		ID:   id,
		Type: TypeRegisterUser,
		Data: registration,
		Headers: map[string]string{
			"message_id":   id,
			"published_at": utils.FormatPublishedAt(time.Now()),
		},
	}
}

// PublishedAt reads the publish time header
func (m Message) PublishedAt() (time.Time, error) {
	return utils.ParsePublishedAt(m.Headers["published_at"])
}

// Encode marshals the envelope
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return body, nil
}

// Decode unmarshals an envelope
func Decode(body []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return m, nil
}

// Dispatch routes a decoded envelope to the handler
func Dispatch(ctx context.Context, m Message, handler ports.RegistrationHandler) models.RegistrationResult {
	switch strings.ToUpper(m.Type) {
	case TypeRegisterUser:
		return handler.HandleRegistration(ctx, m.Data)
	default:
		return models.RegistrationResult{
			Status:  400,
			Message: "Unknown operation type",
		}
	}
}

// Process decodes body, dispatches it and records the outcome. Consumers
// acknowledge the delivery whatever the result; nothing is redelivered.
func Process(ctx context.Context, provider string, body []byte, handler ports.RegistrationHandler) models.RegistrationResult {
	m, err := Decode(body)
	if err != nil {
		logger.Warning("[%s] %v", provider, err)
		metrics.QueueMessages.WithLabelValues(provider, OutcomeMalformed).Inc()
		return models.RegistrationResult{Status: 400, Message: "Invalid message format"}
	}

	result := Dispatch(ctx, m, handler)
	outcome := OutcomeFor(result)
	metrics.QueueMessages.WithLabelValues(provider, outcome).Inc()

	if outcome == OutcomeRegistered {
		lag := "unknown"
		if d, err := utils.DeliveryLag(m.Headers["published_at"], time.Now()); err == nil {
			lag = logger.FormatDuration(d)
		}
		logger.Debug("[%s] message %s registered %s after %s", provider, m.ID, result.User.Username, lag)
	} else {
		logger.Warning("[%s] message %s %s: %s", provider, m.ID, outcome, result.Message)
	}
	return result
}

// OutcomeFor maps a registration result onto a metric label
func OutcomeFor(result models.RegistrationResult) string {
	switch {
	case result.Status >= 200 && result.Status < 300:
		return OutcomeRegistered
	case result.Status >= 400 && result.Status < 500:
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}
