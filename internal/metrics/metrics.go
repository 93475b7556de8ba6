package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Metrics records gateway activity. A nil *Metrics is a no-op.
type Metrics struct {
	upstream    *prometheus.HistogramVec
	checkouts   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	cache       *prometheus.CounterVec
}

// New registers the gateway metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	upstream := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of calls to the BakeReserve API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "status"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Checkout outcomes by payment method.",
	}, []string{"payment_method", "result"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Admin order status changes by target status.",
	}, []string{"status"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_requests_total",
		Help:      "Catalog cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(upstream, checkouts, transitions, cache)
	return &Metrics{
		upstream:    upstream,
		checkouts:   checkouts,
		transitions: transitions,
		cache:       cache,
	}
}

// ObserveUpstream records one upstream call. status 0 means a transport error.
func (m *Metrics) ObserveUpstream(endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.upstream.WithLabelValues(normalizeLabel(endpoint), code).Observe(d.Seconds())
}

func (m *Metrics) IncCheckout(paymentMethod, result string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(paymentMethod), normalizeLabel(result)).Inc()
}

func (m *Metrics) IncTransition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *Metrics) IncCache(result string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
