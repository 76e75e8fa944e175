package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeVIP      = "VIP"
	TypeStandard = "Standard"
	TypePremium  = "Premium"
	TypeBasic    = "Basic"
)

const (
	StatusValid   = "valid"
	StatusScanned = "scanned"
	// StatusExpired is a terminal state reserved for a future expiry policy.
	// The scan path rejects it; nothing sets it yet.
	StatusExpired = "expired"
)

// TicketTypes is the closed set of admission classes.
var TicketTypes = []string{TypeVIP, TypeStandard, TypePremium, TypeBasic}

func IsValidTicketType(t string) bool {
	for _, known := range TicketTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Ticket struct {
	gorm.Model   `json:"-"`
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"-"`
	TicketNumber string     `gorm:"size:50;uniqueIndex;not null" json:"ticket_number"`
	Type         string     `gorm:"size:20;not null" json:"type"`
	Status       string     `gorm:"size:20;not null;default:valid" json:"status"`
	GeneratedAt  time.Time  `gorm:"not null" json:"generated_at"`
	ScannedAt    *time.Time `json:"scanned_at,omitempty"`
	QRData       string     `gorm:"type:text;not null" json:"qr_data"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
