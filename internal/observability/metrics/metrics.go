package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the appointment lifecycle.
type BookingMetrics struct {
	bookingsTotal       *prometheus.CounterVec
	statusUpdatesTotal  *prometheus.CounterVec
	notifyFailuresTotal prometheus.Counter
	realtimeDeliveries  *prometheus.CounterVec
	classifierFallbacks prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docconnect",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Total appointment booking attempts",
		}, []string{"kind", "status"}),
		statusUpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docconnect",
			Subsystem: "appointments",
			Name:      "status_updates_total",
			Help:      "Total appointment status transitions",
		}, []string{"to_status", "actor"}),
		notifyFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docconnect",
			Subsystem: "appointments",
			Name:      "notification_failures_total",
			Help:      "Doctor notifications that could not be persisted",
		}),
		realtimeDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docconnect",
			Subsystem: "realtime",
			Name:      "deliveries_total",
			Help:      "Realtime events delivered or dropped",
		}, []string{"event", "outcome"}),
		classifierFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docconnect",
			Subsystem: "chatbot",
			Name:      "classifier_fallbacks_total",
			Help:      "Symptom classifications served without the model",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.statusUpdatesTotal, m.notifyFailuresTotal, m.realtimeDeliveries, m.classifierFallbacks)
	return m
}

func (m *BookingMetrics) ObserveBooking(kind, status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(kind, status).Inc()
}

func (m *BookingMetrics) ObserveStatusUpdate(toStatus, actor string) {
	if m == nil {
		return
	}
	m.statusUpdatesTotal.WithLabelValues(toStatus, actor).Inc()
}

func (m *BookingMetrics) ObserveNotificationFailure() {
	if m == nil {
		return
	}
	m.notifyFailuresTotal.Inc()
}

func (m *BookingMetrics) ObserveRealtimeDelivery(event string, delivered bool) {
	if m == nil {
		return
	}
	outcome := "dropped"
	if delivered {
		outcome = "delivered"
	}
	m.realtimeDeliveries.WithLabelValues(event, outcome).Inc()
}

func (m *BookingMetrics) ObserveClassifierFallback() {
	if m == nil {
		return
	}
	m.classifierFallbacks.Inc()
}
