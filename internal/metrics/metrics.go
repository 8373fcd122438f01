// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookheaven"

const (
	AuthRegister        = "register"
	AuthLoginSuccess    = "login_success"
	AuthLoginFailed     = "login_failed"
	AuthLoginUnverified = "login_unverified"
	AuthVerify          = "verify"
	AuthResetRequested  = "reset_requested"
	AuthResetCompleted  = "reset_completed"
	AuthRefresh         = "refresh"
)

// Recorder is what services depend on; Nop satisfies it in tests.
type Recorder interface {
	RecordAuthEvent(event string)
	RecordCartOp(op string)
	RecordMailFailure(kind string)
	RecordOrderPlaced(total float64)
}

type Collector struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	authEvents   *prometheus.CounterVec
	cartOps      *prometheus.CounterVec
	mailFailures *prometheus.CounterVec
	orders       prometheus.Counter
	orderValue   prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Account and session events.",
		}, []string{"event"}),
		cartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"op"}),
		mailFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_failures_total",
			Help:      "Mail deliveries that failed, by template.",
		}, []string{"kind"}),
		orders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders created through checkout.",
		}),
		orderValue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_value_total",
			Help:      "Sum of order totals.",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.authEvents,
		c.cartOps,
		c.mailFailures,
		c.orders,
		c.orderValue,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordAuthEvent(event string) {
	c.authEvents.WithLabelValues(event).Inc()
}

func (c *Collector) RecordCartOp(op string) {
	c.cartOps.WithLabelValues(op).Inc()
}

func (c *Collector) RecordMailFailure(kind string) {
	c.mailFailures.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordOrderPlaced(total float64) {
	c.orders.Inc()
	c.orderValue.Add(total)
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type Nop struct{}

func (Nop) RecordAuthEvent(string)    {}
func (Nop) RecordCartOp(string)       {}
func (Nop) RecordMailFailure(string)  {}
func (Nop) RecordOrderPlaced(float64) {}
