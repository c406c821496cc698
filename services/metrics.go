//nolint:gochecknoglobals
package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreatedMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flappion",
		Name:      "bookings_created_total",
		Help:      "Bookings persisted by the intake handler",
	})

	invitationsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flappion",
		Name:      "admin_invitations_total",
		Help:      "Admin invitations issued and redeemed",
	}, []string{"action", "result"})

	emailsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flappion",
		Name:      "emails_total",
		Help:      "Email delivery attempts",
	}, []string{"kind", "status"})
)
