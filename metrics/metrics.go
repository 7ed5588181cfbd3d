package metrics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"receiver/logging"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}

// Ingress outcomes recorded on receiver_ingress_requests_total.
const (
	OutcomeAccepted = "accepted"
	OutcomeInvalid  = "invalid"
	OutcomeTooLarge = "too_large"
)

// Collector tracks ingress activity. Counts are exported to Prometheus and
// summarised in a log line whenever they change, at most once per interval.
type Collector struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	payloadBytes prometheus.Histogram
	inFlight     prometheus.Gauge

	mu            sync.Mutex
	received      int
	inFlightCount int
	changed       bool
	lastLogTime   time.Time
	interval      time.Duration
}

// New creates a Collector with its own registry, including Go runtime and process collectors.
func New(interval time.Duration) *Collector {
	if interval <= 0 {
		interval = time.Second
	}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receiver",
			Subsystem: "ingress",
			Name:      "requests_total",
			Help:      "Ingress requests by outcome.",
		}, []string{"outcome"}),
		payloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "receiver",
			Subsystem: "ingress",
			Name:      "payload_bytes",
			Help:      "Size of accepted payloads in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "receiver",
			Subsystem: "ingress",
			Name:      "in_flight",
			Help:      "Ingress requests currently being handled.",
		}),
		interval: interval,
	}
	c.registry.MustRegister(
		c.requests,
		c.payloadBytes,
		c.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Begin marks a request as in flight. The returned func must be called exactly
// once with the outcome and the number of body bytes read.
func (c *Collector) Begin() func(outcome string, bytes int) {
	c.inFlight.Inc()
	c.mu.Lock()
	c.inFlightCount++
	c.changed = true
	c.mu.Unlock()

	return func(outcome string, bytes int) {
		c.inFlight.Dec()
		c.requests.WithLabelValues(outcome).Inc()
		if outcome == OutcomeAccepted {
			c.payloadBytes.Observe(float64(bytes))
		}

		c.mu.Lock()
		if c.inFlightCount > 0 {
			c.inFlightCount--
		}
		if outcome == OutcomeAccepted {
			c.received++
		}
		c.changed = true
		c.mu.Unlock()
	}
}

// Snapshot returns the accepted payload count and the in-flight count.
func (c *Collector) Snapshot() (received, inFlight int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.received, c.inFlightCount
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Run logs activity until ctx is done.
func (c *Collector) Run(ctx context.Context) {
	tick := c.interval / 2 // check twice per interval
	if tick <= 0 {
		tick = c.interval
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.logIfChanged(now)
		}
	}
}

// logIfChanged reports whether a line was written.
func (c *Collector) logIfChanged(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.changed || now.Sub(c.lastLogTime) < c.interval {
		return false
	}
	log.Infof("Received: %d | In flight: %d", c.received, c.inFlightCount)
	c.lastLogTime = now
	c.changed = false
	return true
}
