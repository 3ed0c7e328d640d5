package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSensitiveData(t *testing.T) {
	assert.Equal(t, "***", MaskSensitiveData("0x1"))
	assert.Equal(t, "0x******ef", MaskSensitiveData("0x12345bef"))
}

func TestShortenWallet(t *testing.T) {
	assert.Equal(t, "0xabc", ShortenWallet("0xabc"))
	assert.Equal(t, "0xa1b2…0042", ShortenWallet("0xa1b2c3d4e5f60042"))
}

func TestGenerateMessageID(t *testing.T) {
	id := GenerateMessageID("  Astro Explorer ")
	assert.True(t, strings.HasPrefix(id, "astro_explorer_"), id)
	assert.NotEqual(t, id, GenerateMessageID("  Astro Explorer "))
}

func TestPublishedAtRoundTrip(t *testing.T) {
	ts := time.Date(2025, 7, 27, 13, 45, 10, 123_000_000, time.FixedZone("CEST", 2*60*60))
	header := FormatPublishedAt(ts)
	assert.Equal(t, "2025-07-27T11:45:10.123Z", header)

	parsed, err := ParsePublishedAt(header)
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	_, err = ParsePublishedAt("  ")
	assert.Error(t, err)
	_, err = ParsePublishedAt("yesterday")
	assert.Error(t, err)
}

func TestDeliveryLag(t *testing.T) {
	now := time.Date(2025, 7, 27, 12, 0, 0, 0, time.UTC)

	lag, err := DeliveryLag("2025-07-27T11:59:58.500Z", now)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, lag)

	lag, err = DeliveryLag("2025-07-27T12:00:03.000Z", now)
	require.NoError(t, err)
	assert.Zero(t, lag)

	_, err = DeliveryLag("", now)
	assert.Error(t, err)
}

func TestTimeoutContext(t *testing.T) {
	ctx, cancel := TimeoutContext(time.Minute)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
