package ticketing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ticketxpress/ticketxpress/internal/models"
	"github.com/ticketxpress/ticketxpress/internal/monitoring"
)

// Store is the authoritative, network-reachable lifecycle engine.
type Store interface {
	NextTicketNumber(ctx context.Context, ticketType string, year int) (string, error)
	Generate(ctx context.Context, ticketNumber, ticketType string) (*models.Ticket, error)
	Scan(ctx context.Context, ticketNumber, location string) (*models.Ticket, error)
	GetTicket(ctx context.Context, ticketNumber string) (*models.Ticket, error)
	Dashboard(ctx context.Context) (*DashboardReport, error)
}

// Fallback is the degraded-mode replica serving the same operations from
// local-only storage when the store cannot be reached.
type Fallback interface {
	NextTicketNumber(ticketType string, year int) (string, error)
	Generate(ticketNumber, ticketType string) (*models.Ticket, error)
	Scan(req ScanRequest) (*models.Ticket, error)
	GetTicket(ticketNumber string) (*models.Ticket, error)
	Dashboard() (*DashboardReport, error)
}

// ScanRequest carries everything a scan may need. Payload is the decoded
// QR snapshot when the scanner had one.
type ScanRequest struct {
	TicketNumber string
	Location     string
	Payload      *RecognizedTicket
}

// Service tries the store under a bounded timeout on every call. Only
// store-level failures reroute that single call to the mirror.
type Service struct {
	store   Store
	mirror  Fallback
	timeout time.Duration
	log     *logrus.Logger
}

func NewService(store Store, mirror Fallback, timeout time.Duration, log *logrus.Logger) *Service {
	return &Service{store: store, mirror: mirror, timeout: timeout, log: log}
}

func (s *Service) NextTicketNumber(ctx context.Context, ticketType string, year int) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	number, err := s.store.NextTicketNumber(ctx, ticketType, year)
	if err == nil || IsDomainError(err) {
		return number, false, err
	}

	s.fellBack("next_ticket_number", err)
	number, err = s.mirror.NextTicketNumber(ticketType, year)
	return number, true, err
}

func (s *Service) Generate(ctx context.Context, ticketNumber, ticketType string) (*models.Ticket, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ticket, err := s.store.Generate(ctx, ticketNumber, ticketType)
	if err == nil {
		monitoring.TicketGenerated(ticketType)
		return ticket, false, nil
	}
	if IsDomainError(err) {
		// Duplicate numbers are surfaced, never retried; renumbering is
		// the allocator's job.
		return ticket, false, err
	}

	s.fellBack("generate", err)
	ticket, err = s.mirror.Generate(ticketNumber, ticketType)
	if err == nil {
		monitoring.TicketGenerated(ticketType)
	}
	return ticket, true, err
}

func (s *Service) Scan(ctx context.Context, req ScanRequest) (*models.Ticket, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ticket, err := s.store.Scan(ctx, req.TicketNumber, req.Location)
	if err == nil || IsDomainError(err) {
		monitoring.TicketScanned(scanOutcome(err))
		return ticket, false, err
	}

	s.fellBack("scan", err)
	ticket, err = s.mirror.Scan(req)
	monitoring.TicketScanned(scanOutcome(err))
	return ticket, true, err
}

func (s *Service) GetTicket(ctx context.Context, ticketNumber string) (*models.Ticket, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ticket, err := s.store.GetTicket(ctx, ticketNumber)
	if err == nil || IsDomainError(err) {
		return ticket, false, err
	}

	s.fellBack("get_ticket", err)
	ticket, err = s.mirror.GetTicket(ticketNumber)
	return ticket, true, err
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardReport, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.store.Dashboard(ctx)
	if err == nil || IsDomainError(err) {
		return report, false, err
	}

	s.fellBack("dashboard", err)
	report, err = s.mirror.Dashboard()
	return report, true, err
}

func (s *Service) fellBack(operation string, err error) {
	monitoring.MirrorFallback(operation)
	if s.log != nil {
		s.log.WithFields(logrus.Fields{
			"operation": operation,
			"error":     err.Error(),
		}).Warn("ticket store unreachable, serving from offline mirror")
	}
}

func scanOutcome(err error) string {
	switch {
	case err == nil:
		return "validated"
	case IsDomainError(err):
		return "rejected"
	default:
		return "error"
	}
}
