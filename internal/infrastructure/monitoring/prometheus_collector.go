package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector exposes coordinator state to Prometheus. Gauges for
// the three state tables are sampled on scrape; counters are pushed from
// the hub and the notification relay.
type PrometheusCollector struct {
	eventsTotal          *prometheus.CounterVec
	deliveriesTotal      prometheus.Counter
	notificationsDropped prometheus.Counter
}

// NewPrometheusCollector registers all metrics. The count funcs read the
// live tables: presence entries, call sessions, stream rooms.
func NewPrometheusCollector(onlineUsers, activeCalls, activeStreams func() int) *PrometheusCollector {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "pulsehub_online_users",
		Help: "Number of users currently registered as online",
	}, func() float64 { return float64(onlineUsers()) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "pulsehub_active_calls",
		Help: "Number of live call sessions",
	}, func() float64 { return float64(activeCalls()) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "pulsehub_active_streams",
		Help: "Number of live stream rooms",
	}, func() float64 { return float64(activeStreams()) })

	return &PrometheusCollector{
		eventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pulsehub_events_total",
			Help: "Inbound signaling events by type",
		}, []string{"type"}),

		deliveriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulsehub_deliveries_total",
			Help: "Outbound events successfully written to a connection",
		}),

		notificationsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pulsehub_notifications_dropped_total",
			Help: "Notifications dropped because the recipient was offline",
		}),
	}
}

func (c *PrometheusCollector) IncEvent(eventType string) {
	c.eventsTotal.WithLabelValues(eventType).Inc()
}

func (c *PrometheusCollector) IncDelivery() {
	c.deliveriesTotal.Inc()
}

func (c *PrometheusCollector) IncDroppedNotification() {
	c.notificationsDropped.Inc()
}
