package ticketing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketxpress/ticketxpress/internal/models"
)

func TestNextTicketNumberStartsAtOne(t *testing.T) {
	e := newTestEngine(t)

	number, err := e.NextTicketNumber(context.Background(), models.TypeVIP, 2025)
	require.NoError(t, err)
	assert.Equal(t, "VIP-2025-001", number)
}

func TestNextTicketNumberFollowsGreatest(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for _, number := range []string{"VIP-2025-001", "VIP-2025-007", "VIP-2025-003"} {
		_, err := e.Generate(ctx, number, models.TypeVIP)
		require.NoError(t, err)
	}

	number, err := e.NextTicketNumber(ctx, models.TypeVIP, 2025)
	require.NoError(t, err)
	assert.Equal(t, "VIP-2025-008", number)
}

func TestNextTicketNumberNamespaces(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Generate(ctx, "VIP-2025-004", models.TypeVIP)
	require.NoError(t, err)
	_, err = e.Generate(ctx, "VIP-2024-009", models.TypeVIP)
	require.NoError(t, err)

	// Other types and other years number independently.
	number, err := e.NextTicketNumber(ctx, models.TypeStandard, 2025)
	require.NoError(t, err)
	assert.Equal(t, "Standard-2025-001", number)

	number, err = e.NextTicketNumber(ctx, models.TypeVIP, 2025)
	require.NoError(t, err)
	assert.Equal(t, "VIP-2025-005", number)

	number, err = e.NextTicketNumber(ctx, models.TypeVIP, 2024)
	require.NoError(t, err)
	assert.Equal(t, "VIP-2024-010", number)
}

func TestNextTicketNumberRejectsUnknownType(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.NextTicketNumber(context.Background(), "Platinum", 2025)
	assert.ErrorIs(t, err, ErrInvalidTicketType)
}

func TestNextTicketNumberIsAdvisory(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Two stations asking before either persists get the same suggestion;
	// the unique index arbitrates when both try to generate.
	first, err := e.NextTicketNumber(ctx, models.TypeBasic, 2025)
	require.NoError(t, err)
	second, err := e.NextTicketNumber(ctx, models.TypeBasic, 2025)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = e.Generate(ctx, first, models.TypeBasic)
	require.NoError(t, err)
	_, err = e.Generate(ctx, second, models.TypeBasic)
	assert.ErrorIs(t, err, ErrDuplicateTicketNumber)
}

func TestTrailingSequence(t *testing.T) {
	seq, err := trailingSequence("VIP-2025-042")
	require.NoError(t, err)
	assert.Equal(t, 42, seq)

	for _, bad := range []string{"", "VIP", "VIP-2025-", "VIP-2025-abc"} {
		_, err := trailingSequence(bad)
		assert.Error(t, err, fmt.Sprintf("number %q", bad))
	}
}
