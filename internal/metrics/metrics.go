package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Simplici0/burritos/internal/events"
	"github.com/Simplici0/burritos/internal/ledger"
	"github.com/Simplici0/burritos/internal/pricing"
)

const namespace = "burritos"

// Metrics holds the HTTP and business collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	ChangesTotal *prometheus.CounterVec

	PaidToday        prometheus.Gauge
	BreakEvenToday   prometheus.Gauge
	PercentAchieved  prometheus.Gauge
	PendingAmount    prometheus.Gauge
	SummaryAvailable prometheus.Gauge
}

// New creates and registers every collector.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
	m.HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Number of HTTP requests currently being processed",
	})
	m.ChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "Committed mutations by entity and operation",
		},
		[]string{"entity", "op"},
	)
	m.PaidToday = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "paid_total_today",
		Help:      "Paid sales of the current day",
	})
	m.BreakEvenToday = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "break_even_today",
		Help:      "Break-even point of the current day",
	})
	m.PercentAchieved = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "break_even_percent_achieved",
		Help:      "Percent of today's break-even point covered by paid sales",
	})
	m.PendingAmount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_amount",
		Help:      "Amount owed by unpaid sales across all days",
	})
	m.SummaryAvailable = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "summary_available",
		Help:      "1 when today's summary could be computed",
	})

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ChangesTotal,
		m.PaidToday,
		m.BreakEvenToday,
		m.PercentAchieved,
		m.PendingAmount,
		m.SummaryAvailable,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records request counts and latencies labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordHTTPRequest(r.Method, route, status, time.Since(start))
	})
}

// SummarySource computes the day summary the gauges mirror.
type SummarySource interface {
	Today() time.Time
	DailySummary(ctx context.Context, date time.Time) (ledger.DailySummary, error)
	DayTotals(ctx context.Context, date time.Time) (pricing.SalesTotals, error)
}

// Refresh recomputes the business gauges from today's summary.
func (m *Metrics) Refresh(ctx context.Context, src SummarySource) error {
	today := src.Today()
	summary, err := src.DailySummary(ctx, today)
	if errors.Is(err, ledger.ErrNotAvailable) {
		m.SummaryAvailable.Set(0)
		m.PaidToday.Set(0)
		m.BreakEvenToday.Set(0)
		m.PercentAchieved.Set(0)
		// Pending sales span every date, so they are reported without a product of the day.
		totals, err := src.DayTotals(ctx, today)
		if err != nil {
			m.PendingAmount.Set(0)
			return err
		}
		m.PendingAmount.Set(totals.PendingAmount)
		return nil
	}
	if err != nil {
		return err
	}
	m.SummaryAvailable.Set(1)
	m.PaidToday.Set(summary.PaidTotal)
	m.BreakEvenToday.Set(summary.BreakEvenPoint)
	m.PercentAchieved.Set(summary.PercentAchieved)
	m.PendingAmount.Set(summary.PendingAmount)
	return nil
}

// Follow counts every change and refreshes the gauges after it, until ctx ends
// or the channel closes.
func (m *Metrics) Follow(ctx context.Context, changes <-chan events.Change, src SummarySource, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := m.Refresh(ctx, src); err != nil {
		log.Warn("refresh summary gauges", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			m.ChangesTotal.WithLabelValues(string(c.Entity), string(c.Op)).Inc()
			if err := m.Refresh(ctx, src); err != nil {
				log.Warn("refresh summary gauges", zap.Error(err))
			}
		}
	}
}
