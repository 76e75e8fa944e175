package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_generated_total",
			Help: "Tickets issued, by type",
		},
		[]string{"type"},
	)

	ticketsScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_scanned_total",
			Help: "Scan attempts, by outcome",
		},
		[]string{"outcome"},
	)

	mirrorFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_fallbacks_total",
			Help: "Operations served by the offline mirror after a store failure",
		},
		[]string{"operation"},
	)
)

func TicketGenerated(ticketType string) {
	ticketsGenerated.WithLabelValues(ticketType).Inc()
}

func TicketScanned(outcome string) {
	ticketsScanned.WithLabelValues(outcome).Inc()
}

func MirrorFallback(operation string) {
	mirrorFallbacks.WithLabelValues(operation).Inc()
}
