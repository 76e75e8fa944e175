package mirror

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketxpress/ticketxpress/internal/models"
	"github.com/ticketxpress/ticketxpress/internal/ticketing"
)

func newTestMirror(t *testing.T) *Mirror {
	t.Helper()

	m, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestNextTicketNumberSeededAtOne(t *testing.T) {
	m := newTestMirror(t)

	number, err := m.NextTicketNumber(models.TypeVIP, 2025)
	require.NoError(t, err)
	assert.Equal(t, "VIP-2025-001", number)

	_, err = m.NextTicketNumber("Platinum", 2025)
	assert.ErrorIs(t, err, ticketing.ErrInvalidTicketType)
}

func TestGenerateAdvancesCounter(t *testing.T) {
	m := newTestMirror(t)

	ticket, err := m.Generate("VIP-2025-001", models.TypeVIP)
	require.NoError(t, err)
	assert.Equal(t, models.StatusValid, ticket.Status)
	assert.NotEmpty(t, ticket.QRData)

	number, err := m.NextTicketNumber(models.TypeVIP, 2025)
	require.NoError(t, err)
	assert.Equal(t, "VIP-2025-002", number)
}

func TestGenerateRejectsLocalDuplicate(t *testing.T) {
	m := newTestMirror(t)

	_, err := m.Generate("VIP-2025-001", models.TypeVIP)
	require.NoError(t, err)

	_, err = m.Generate("VIP-2025-001", models.TypeVIP)
	assert.ErrorIs(t, err, ticketing.ErrDuplicateTicketNumber)
}

func TestScanLocallyGeneratedTicket(t *testing.T) {
	m := newTestMirror(t)

	_, err := m.Generate("Standard-2025-004", models.TypeStandard)
	require.NoError(t, err)

	ticket, err := m.Scan(ticketing.ScanRequest{TicketNumber: "Standard-2025-004", Location: "Gate A"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScanned, ticket.Status)
	require.NotNil(t, ticket.ScannedAt)
	firstScan := *ticket.ScannedAt

	again, err := m.Scan(ticketing.ScanRequest{TicketNumber: "Standard-2025-004", Location: "Gate B"})
	assert.ErrorIs(t, err, ticketing.ErrAlreadyScanned)
	require.NotNil(t, again)
	require.NotNil(t, again.ScannedAt)
	assert.True(t, firstScan.Equal(*again.ScannedAt))
}

func TestScanTrustsPayloadForUnknownTicket(t *testing.T) {
	m := newTestMirror(t)

	// The QR payload is self-contained, so a ticket issued elsewhere can
	// still be validated while this station is offline.
	payload := &ticketing.RecognizedTicket{
		ID:        "VIP-2025-009",
		Type:      models.TypeVIP,
		Generated: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
		Status:    models.StatusValid,
	}

	ticket, err := m.Scan(ticketing.ScanRequest{TicketNumber: payload.ID, Payload: payload, Location: "Gate A"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScanned, ticket.Status)

	_, err = m.Scan(ticketing.ScanRequest{TicketNumber: payload.ID, Payload: payload})
	assert.ErrorIs(t, err, ticketing.ErrAlreadyScanned)
}

func TestScanUnknownTicketWithoutPayload(t *testing.T) {
	m := newTestMirror(t)

	_, err := m.Scan(ticketing.ScanRequest{TicketNumber: "Basic-2025-999"})
	assert.ErrorIs(t, err, ticketing.ErrTicketNotFound)
}

func TestDashboardCountsLocalOnly(t *testing.T) {
	m := newTestMirror(t)

	for _, number := range []string{"VIP-2025-001", "VIP-2025-002", "VIP-2025-003"} {
		_, err := m.Generate(number, models.TypeVIP)
		require.NoError(t, err)
	}
	_, err := m.Scan(ticketing.ScanRequest{TicketNumber: "VIP-2025-001", Location: "Gate A"})
	require.NoError(t, err)
	_, err = m.Scan(ticketing.ScanRequest{TicketNumber: "VIP-2025-003", Location: "Gate A"})
	require.NoError(t, err)

	report, err := m.Dashboard()
	require.NoError(t, err)
	assert.EqualValues(t, 3, report.Stats.TotalGenerated)
	assert.EqualValues(t, 2, report.Stats.TotalScanned)
	assert.EqualValues(t, 1, report.Stats.Remaining)

	require.Len(t, report.ValidatedTickets, 2)
	assert.Equal(t, "VIP-2025-003", report.ValidatedTickets[0].ID)
	assert.Equal(t, "VIP-2025-001", report.ValidatedTickets[1].ID)
}

func TestDashboardToleratesMissingScanStamp(t *testing.T) {
	m := newTestMirror(t)

	_, err := m.Generate("VIP-2025-001", models.TypeVIP)
	require.NoError(t, err)
	_, err = m.Scan(ticketing.ScanRequest{TicketNumber: "VIP-2025-001", Location: "Gate A"})
	require.NoError(t, err)

	// A hand-edited mirror can hold a scanned entry without its stamp.
	err = m.db.Update(func(txn *badger.Txn) error {
		scanned, err := readTickets(txn, scannedKey)
		if err != nil {
			return err
		}
		scanned = append(scanned, localTicket{
			ID:     "VIP-2025-002",
			Type:   models.TypeVIP,
			Status: models.StatusScanned,
		})
		return writeTickets(txn, scannedKey, scanned)
	})
	require.NoError(t, err)

	report, err := m.Dashboard()
	require.NoError(t, err)
	assert.EqualValues(t, 2, report.Stats.TotalScanned)
	require.Len(t, report.ValidatedTickets, 1)
	assert.Equal(t, "VIP-2025-001", report.ValidatedTickets[0].ID)
}

func TestMirrorStatePersistsAcrossSessions(t *testing.T) {
	dir := t.TempDir()

	m, err := Open(dir)
	require.NoError(t, err)
	_, err = m.Generate("VIP-2025-001", models.TypeVIP)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m, err = Open(dir)
	require.NoError(t, err)
	defer m.Close()

	ticket, err := m.GetTicket("VIP-2025-001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusValid, ticket.Status)

	number, err := m.NextTicketNumber(models.TypeVIP, 2025)
	require.NoError(t, err)
	assert.Equal(t, "VIP-2025-002", number)
}
