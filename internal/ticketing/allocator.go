package ticketing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ticketxpress/ticketxpress/internal/models"
	"gorm.io/gorm"
)

// NextTicketNumber suggests the next unused number for a type/year pair,
// starting at 1 when none exists. Advisory only: the store's unique index
// decides the winner if two stations race for the same suggestion.
func (e *Engine) NextTicketNumber(ctx context.Context, ticketType string, year int) (string, error) {
	if !models.IsValidTicketType(ticketType) {
		return "", ErrInvalidTicketType
	}

	prefix := fmt.Sprintf("%s-%d-", ticketType, year)

	var last models.Ticket
	err := e.db.WithContext(ctx).
		Where("ticket_number LIKE ?", prefix+"%").
		Order("ticket_number DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return prefix + "001", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sequence, err := trailingSequence(last.TicketNumber)
	if err != nil {
		return "", fmt.Errorf("parsing last issued number %q: %w", last.TicketNumber, err)
	}

	return fmt.Sprintf("%s%03d", prefix, sequence+1), nil
}

func trailingSequence(ticketNumber string) (int, error) {
	idx := strings.LastIndex(ticketNumber, "-")
	if idx < 0 || idx == len(ticketNumber)-1 {
		return 0, fmt.Errorf("no sequence suffix in %q", ticketNumber)
	}
	return strconv.Atoi(ticketNumber[idx+1:])
}
