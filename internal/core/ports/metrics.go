package ports

// Metrics receives operational counters from the coordinator. Implemented
// by the Prometheus collector; a no-op implementation exists for tests.
type Metrics interface {
	IncEvent(eventType string)
	IncDelivery()
	IncDroppedNotification()
}

type nopMetrics struct{}

func (nopMetrics) IncEvent(string)         {}
func (nopMetrics) IncDelivery()            {}
func (nopMetrics) IncDroppedNotification() {}

// NopMetrics discards all counters.
func NopMetrics() Metrics { return nopMetrics{} }
