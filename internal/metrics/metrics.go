// Package metrics exposes the Prometheus instruments served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckinsAccepted counts check-ins that passed validation and dedupe.
	CheckinsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkin_accepted_total",
		Help: "Accepted check-ins.",
	})

	// CheckinsRejected counts rejected check-ins by reason.
	CheckinsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkin_rejected_total",
		Help: "Rejected check-ins by reason.",
	}, []string{"reason"})

	// BroadcastsPublished counts change events handed to the queue.
	BroadcastsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkin_broadcasts_published_total",
		Help: "Change events published for observer fan-out.",
	})

	// BroadcastsDropped counts frames skipped for slow or gone observers.
	BroadcastsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkin_broadcasts_dropped_total",
		Help: "Frames not delivered to an observer.",
	})

	// ObserversConnected gauges the current websocket observer count.
	ObserversConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkin_observers_connected",
		Help: "Currently connected websocket observers.",
	})
)
