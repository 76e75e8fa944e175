package ticketing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ticketxpress/ticketxpress/internal/models"
	"gorm.io/gorm"
)

// The {TYPE}-{YEAR}-{NNN} shape. The engine only checks syntax; the unique
// index arbitrates collisions.
var ticketNumberPattern = regexp.MustCompile(`^[A-Za-z]+-\d{4}-\d{3,}$`)

// Engine applies the ticket lifecycle against the authoritative store.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Generate inserts a new valid ticket with its QR snapshot. The engine
// never renumbers on a duplicate.
func (e *Engine) Generate(ctx context.Context, ticketNumber, ticketType string) (*models.Ticket, error) {
	if !models.IsValidTicketType(ticketType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTicketType, ticketType)
	}
	if !ticketNumberPattern.MatchString(ticketNumber) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTicketNumber, ticketNumber)
	}

	now := time.Now().UTC()
	payload, err := EncodePayload(ticketNumber, ticketType, now)
	if err != nil {
		return nil, fmt.Errorf("encoding qr payload: %w", err)
	}

	ticket := models.Ticket{
		TicketNumber: ticketNumber,
		Type:         ticketType,
		Status:       models.StatusValid,
		GeneratedAt:  now,
		QRData:       payload,
	}

	if err := e.db.WithContext(ctx).Create(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTicketNumber, ticketNumber)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &ticket, nil
}

// Scan moves a ticket from valid to scanned. The conditional update with
// its affected-row count checked gives racing stations exactly one winner.
func (e *Engine) Scan(ctx context.Context, ticketNumber, location string) (*models.Ticket, error) {
	if ticketNumber == "" {
		return nil, ErrInvalidTicketNumber
	}

	var scanned models.Ticket
	var outcome error

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.Where("ticket_number = ?", ticketNumber).First(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome = fmt.Errorf("%w: %s", ErrTicketNotFound, ticketNumber)
				return nil
			}
			return err
		}

		switch ticket.Status {
		case models.StatusScanned:
			scanned = ticket
			outcome = ErrAlreadyScanned
			return nil
		case models.StatusExpired:
			scanned = ticket
			outcome = ErrTicketExpired
			return nil
		}

		now := time.Now().UTC()
		result := tx.Model(&models.Ticket{}).
			Where("ticket_number = ? AND status = ?", ticketNumber, models.StatusValid).
			Updates(map[string]any{"status": models.StatusScanned, "scanned_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// A concurrent scan committed between our read and the update.
			if err := tx.Where("ticket_number = ?", ticketNumber).First(&scanned).Error; err != nil {
				return err
			}
			outcome = ErrAlreadyScanned
			return nil
		}

		event := models.ScanEvent{
			TicketID:  ticket.ID,
			ScannedAt: now,
			Location:  location,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		ticket.Status = models.StatusScanned
		ticket.ScannedAt = &now
		scanned = ticket
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if outcome != nil {
		if scanned.TicketNumber != "" {
			return &scanned, outcome
		}
		return nil, outcome
	}

	return &scanned, nil
}

// GetTicket fetches a ticket by number, for rendering its stored QR payload.
func (e *Engine) GetTicket(ctx context.Context, ticketNumber string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := e.db.WithContext(ctx).Where("ticket_number = ?", ticketNumber).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &ticket, nil
}

type Stats struct {
	TotalGenerated int64 `json:"totalGenerated"`
	TotalScanned   int64 `json:"totalScanned"`
	Remaining      int64 `json:"remaining"`
}

type ValidatedTicket struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ScannedAt time.Time `json:"scannedAt"`
}

type DashboardReport struct {
	Stats            Stats             `json:"stats"`
	ValidatedTickets []ValidatedTicket `json:"validatedTickets"`
}

// Dashboard aggregates issue/scan totals and the validation log, newest
// scan first.
func (e *Engine) Dashboard(ctx context.Context) (*DashboardReport, error) {
	db := e.db.WithContext(ctx)

	var totalGenerated, totalScanned int64
	if err := db.Model(&models.Ticket{}).Count(&totalGenerated).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := db.Model(&models.Ticket{}).
		Where("status = ?", models.StatusScanned).
		Count(&totalScanned).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	validated := []ValidatedTicket{}
	err := db.Model(&models.ScanEvent{}).
		Select("tickets.ticket_number AS id, tickets.type AS type, scan_events.scanned_at AS scanned_at").
		Joins("JOIN tickets ON tickets.id = scan_events.ticket_id").
		Order("scan_events.scanned_at DESC").
		Scan(&validated).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &DashboardReport{
		Stats: Stats{
			TotalGenerated: totalGenerated,
			TotalScanned:   totalScanned,
			Remaining:      totalGenerated - totalScanned,
		},
		ValidatedTickets: validated,
	}, nil
}
