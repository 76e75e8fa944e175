// Package mirror serves the lifecycle operations from a local badger
// database when the ticket store cannot be reached. Records are scoped to
// this station and never reconciled back.
package mirror

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/ticketxpress/ticketxpress/internal/models"
	"github.com/ticketxpress/ticketxpress/internal/ticketing"
)

// The three persisted entries, each JSON-serialized.
var (
	generatedKey = []byte("ticketxpress_generated")
	scannedKey   = []byte("ticketxpress_scanned")
	counterKey   = []byte("ticketxpress_counter")
)

type localTicket struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Generated time.Time  `json:"generated"`
	Status    string     `json:"status"`
	Scanned   *time.Time `json:"scanned,omitempty"`
	Location  string     `json:"location,omitempty"`
}

type Mirror struct {
	db *badger.DB
}

func Open(path string) (*Mirror, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening mirror store: %w", err)
	}
	return &Mirror{db: db}, nil
}

func (m *Mirror) Close() error {
	return m.db.Close()
}

// NextTicketNumber numbers from the local counter, seeded at 1. There is
// no cross-station uniqueness guarantee in this mode.
func (m *Mirror) NextTicketNumber(ticketType string, year int) (string, error) {
	if !models.IsValidTicketType(ticketType) {
		return "", ticketing.ErrInvalidTicketType
	}

	var counter int
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		counter, err = readCounter(txn)
		return err
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-%03d", ticketType, year, counter), nil
}

// Generate appends to the local generated log and bumps the counter.
// Duplicates issued by other stations are invisible here.
func (m *Mirror) Generate(ticketNumber, ticketType string) (*models.Ticket, error) {
	if !models.IsValidTicketType(ticketType) {
		return nil, fmt.Errorf("%w: %q", ticketing.ErrInvalidTicketType, ticketType)
	}

	var created localTicket
	err := m.db.Update(func(txn *badger.Txn) error {
		generated, err := readTickets(txn, generatedKey)
		if err != nil {
			return err
		}
		for _, t := range generated {
			if t.ID == ticketNumber {
				return fmt.Errorf("%w: %s", ticketing.ErrDuplicateTicketNumber, ticketNumber)
			}
		}

		created = localTicket{
			ID:        ticketNumber,
			Type:      ticketType,
			Generated: time.Now().UTC(),
			Status:    models.StatusValid,
		}
		if err := writeTickets(txn, generatedKey, append(generated, created)); err != nil {
			return err
		}

		counter, err := readCounter(txn)
		if err != nil {
			return err
		}
		return writeCounter(txn, counter+1)
	})
	if err != nil {
		return nil, err
	}

	return created.toModel()
}

// Scan validates against the local logs only. A ticket absent from the
// local generated log is still honored when the decoded QR payload is
// supplied; the payload is a self-contained capability token.
func (m *Mirror) Scan(req ticketing.ScanRequest) (*models.Ticket, error) {
	if req.TicketNumber == "" {
		return nil, ticketing.ErrInvalidTicketNumber
	}

	var result localTicket
	var outcome error

	err := m.db.Update(func(txn *badger.Txn) error {
		scanned, err := readTickets(txn, scannedKey)
		if err != nil {
			return err
		}
		for _, t := range scanned {
			if t.ID == req.TicketNumber {
				result = t
				outcome = ticketing.ErrAlreadyScanned
				return nil
			}
		}

		generated, err := readTickets(txn, generatedKey)
		if err != nil {
			return err
		}

		ticket, generatedIdx := findTicket(generated, req.TicketNumber)
		if ticket == nil && req.Payload != nil {
			ticket = &localTicket{
				ID:        req.Payload.ID,
				Type:      req.Payload.Type,
				Generated: req.Payload.GeneratedAt(),
				Status:    req.Payload.Status,
			}
		}
		if ticket == nil {
			outcome = fmt.Errorf("%w: %s", ticketing.ErrTicketNotFound, req.TicketNumber)
			return nil
		}
		if ticket.Status == models.StatusExpired {
			result = *ticket
			outcome = ticketing.ErrTicketExpired
			return nil
		}

		now := time.Now().UTC()
		ticket.Status = models.StatusScanned
		ticket.Scanned = &now
		ticket.Location = req.Location

		if err := writeTickets(txn, scannedKey, append(scanned, *ticket)); err != nil {
			return err
		}
		if generatedIdx >= 0 {
			generated[generatedIdx] = *ticket
			if err := writeTickets(txn, generatedKey, generated); err != nil {
				return err
			}
		}

		result = *ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		if result.ID != "" {
			ticket, convErr := result.toModel()
			if convErr != nil {
				return nil, convErr
			}
			return ticket, outcome
		}
		return nil, outcome
	}

	return result.toModel()
}

func (m *Mirror) GetTicket(ticketNumber string) (*models.Ticket, error) {
	var found *localTicket
	err := m.db.View(func(txn *badger.Txn) error {
		generated, err := readTickets(txn, generatedKey)
		if err != nil {
			return err
		}
		found, _ = findTicket(generated, ticketNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ticketing.ErrTicketNotFound, ticketNumber)
	}
	return found.toModel()
}

// Dashboard reports local-only counts, newest scan first.
func (m *Mirror) Dashboard() (*ticketing.DashboardReport, error) {
	var generated, scanned []localTicket
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		if generated, err = readTickets(txn, generatedKey); err != nil {
			return err
		}
		scanned, err = readTickets(txn, scannedKey)
		return err
	})
	if err != nil {
		return nil, err
	}

	// A scanned-log entry can lose its stamp to hand-edited or corrupt
	// mirror data; treat those as oldest and keep them off the list.
	sort.Slice(scanned, func(i, j int) bool {
		switch {
		case scanned[j].Scanned == nil:
			return scanned[i].Scanned != nil
		case scanned[i].Scanned == nil:
			return false
		}
		return scanned[i].Scanned.After(*scanned[j].Scanned)
	})

	validated := make([]ticketing.ValidatedTicket, 0, len(scanned))
	for _, t := range scanned {
		if t.Scanned == nil {
			continue
		}
		validated = append(validated, ticketing.ValidatedTicket{
			ID:        t.ID,
			Type:      t.Type,
			ScannedAt: *t.Scanned,
		})
	}

	total := int64(len(generated))
	scannedCount := int64(len(scanned))
	return &ticketing.DashboardReport{
		Stats: ticketing.Stats{
			TotalGenerated: total,
			TotalScanned:   scannedCount,
			Remaining:      total - scannedCount,
		},
		ValidatedTickets: validated,
	}, nil
}

func (t localTicket) toModel() (*models.Ticket, error) {
	payload, err := ticketing.EncodePayload(t.ID, t.Type, t.Generated)
	if err != nil {
		return nil, err
	}
	return &models.Ticket{
		TicketNumber: t.ID,
		Type:         t.Type,
		Status:       t.Status,
		GeneratedAt:  t.Generated,
		ScannedAt:    t.Scanned,
		QRData:       payload,
	}, nil
}

func findTicket(tickets []localTicket, ticketNumber string) (*localTicket, int) {
	for i := range tickets {
		if tickets[i].ID == ticketNumber {
			return &tickets[i], i
		}
	}
	return nil, -1
}

func readTickets(txn *badger.Txn, key []byte) ([]localTicket, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var tickets []localTicket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		return nil, fmt.Errorf("corrupt mirror entry %s: %w", key, err)
	}
	return tickets, nil
}

func writeTickets(txn *badger.Txn, key []byte, tickets []localTicket) error {
	raw, err := json.Marshal(tickets)
	if err != nil {
		return err
	}
	return txn.Set(key, raw)
}

func readCounter(txn *badger.Txn) (int, error) {
	item, err := txn.Get(counterKey)
	if err == badger.ErrKeyNotFound {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	var counter int
	if err := json.Unmarshal(raw, &counter); err != nil {
		return 0, fmt.Errorf("corrupt mirror counter: %w", err)
	}
	return counter, nil
}

func writeCounter(txn *badger.Txn, counter int) error {
	raw, err := json.Marshal(counter)
	if err != nil {
		return err
	}
	return txn.Set(counterKey, raw)
}
