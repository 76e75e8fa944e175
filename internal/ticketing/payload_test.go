package ticketing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePayloadRoundTrip(t *testing.T) {
	generated := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	payload, err := EncodePayload("VIP-2025-001", "VIP", generated)
	require.NoError(t, err)

	decoded := DecodePayload(payload)
	require.True(t, decoded.Recognized())
	assert.Equal(t, "VIP-2025-001", decoded.Ticket.ID)
	assert.Equal(t, "VIP", decoded.Ticket.Type)
	assert.Equal(t, "valid", decoded.Ticket.Status)
	assert.True(t, generated.Equal(decoded.Ticket.GeneratedAt()))
}

func TestEncodePayloadFieldNames(t *testing.T) {
	payload, err := EncodePayload("Basic-2025-007", "Basic", time.Now().UTC())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	for _, key := range []string{"id", "type", "generated", "status"} {
		assert.Contains(t, raw, key)
	}
}

func TestDecodePayloadForeignContent(t *testing.T) {
	for _, content := range []string{
		"https://example.com/menu",
		"not json at all",
		`{"some":"other","json":"object"}`,
		`{"id":"X-2025-001"}`,
		`{"type":"VIP"}`,
		"",
	} {
		decoded := DecodePayload(content)
		assert.False(t, decoded.Recognized(), "content %q should be foreign", content)
		assert.Equal(t, content, decoded.Raw)
	}
}

func TestDecodePayloadBadTimestamp(t *testing.T) {
	decoded := DecodePayload(`{"id":"VIP-2025-001","type":"VIP","generated":"yesterday","status":"valid"}`)
	require.True(t, decoded.Recognized())
	assert.True(t, decoded.Ticket.GeneratedAt().IsZero())
}
