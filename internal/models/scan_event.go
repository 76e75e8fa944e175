package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanEvent is written in the same transaction as the scan itself.
type ScanEvent struct {
	gorm.Model `json:"-"`
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	TicketID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Ticket     Ticket    `json:"-"`
	ScannedAt  time.Time `gorm:"not null" json:"scanned_at"`
	Location   string    `gorm:"size:100" json:"location"`
}

func (event *ScanEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}
