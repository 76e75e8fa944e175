package ticketing

import "errors"

var (
	// ErrStoreUnavailable wraps any failure reaching the ticket store and
	// signals the fallback to the offline mirror.
	ErrStoreUnavailable = errors.New("ticket store unavailable")

	ErrDuplicateTicketNumber = errors.New("ticket number already exists")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrAlreadyScanned        = errors.New("ticket has already been scanned")
	ErrTicketExpired         = errors.New("ticket has expired")

	ErrInvalidTicketType   = errors.New("unknown ticket type")
	ErrInvalidTicketNumber = errors.New("malformed ticket number")
)

// IsDomainError reports whether err is a rule outcome rather than a store
// failure.
func IsDomainError(err error) bool {
	for _, domain := range []error{
		ErrDuplicateTicketNumber,
		ErrTicketNotFound,
		ErrAlreadyScanned,
		ErrTicketExpired,
		ErrInvalidTicketType,
		ErrInvalidTicketNumber,
	} {
		if errors.Is(err, domain) {
			return true
		}
	}
	return false
}
