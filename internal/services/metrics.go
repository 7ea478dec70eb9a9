package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrental_bookings_created_total",
		Help: "The total number of bookings committed together with their payment",
	})
	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrental_booking_transitions_total",
		Help: "The total number of committed booking status changes, by target status",
	}, []string{"status"})
	txFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrental_booking_tx_failures_total",
		Help: "The total number of booking transactions rolled back on a storage error",
	}, []string{"operation"})
)
