package utils

import (
	"context"
	"errors"
	"strings"
	"time"
)

// PublishedAtLayout is the millisecond UTC layout of the published_at
// message header
const PublishedAtLayout = "2006-01-02T15:04:05.000Z"

// TimeoutContext bounds a call made outside any request, such as a
// connection ping or a disconnect on shutdown
func TimeoutContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// FormatPublishedAt renders t for the published_at header
func FormatPublishedAt(t time.Time) string {
	return t.UTC().Format(PublishedAtLayout)
}

// ParsePublishedAt reads a published_at header value
func ParsePublishedAt(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, errors.New("published_at header is missing")
	}
	return time.Parse(PublishedAtLayout, value)
}

// DeliveryLag returns how long a message spent in the queue. Publisher
// clocks running ahead of ours yield zero.
func DeliveryLag(publishedAt string, now time.Time) (time.Duration, error) {
	sent, err := ParsePublishedAt(publishedAt)
	if err != nil {
		return 0, err
	}
	return max(now.Sub(sent), 0), nil
}
