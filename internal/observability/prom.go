package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec
	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// media uploads
	UploadDuration *prometheus.HistogramVec

	// admin access
	LoginAttempts  *prometheus.CounterVec
	GateDecisions  *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	BookingsTotal  prometheus.Counter
	NotifyFailures prometheus.Counter
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "devevent",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "devevent",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "devevent",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "devevent",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "devevent",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		UploadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "devevent",
				Subsystem: "media",
				Name:      "upload_duration_seconds",
				Help:      "Image upload latency by driver and result.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"driver", "result"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "devevent",
				Subsystem: "admin",
				Name:      "login_attempts_total",
				Help:      "Admin login attempts by result.",
			},
			[]string{"result"}, // result=ok|invalid|rate_limited
		),
		GateDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "devevent",
				Subsystem: "admin",
				Name:      "gate_decisions_total",
				Help:      "Admin request gate outcomes.",
			},
			[]string{"decision"}, // decision=login_page|allow|redirect
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "devevent",
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Event read cache lookups by result.",
			},
			[]string{"result"}, // result=hit|miss|error
		),
		BookingsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "devevent",
				Name:      "bookings_created_total",
				Help:      "Bookings persisted.",
			},
		),
		NotifyFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "devevent",
				Subsystem: "notifications",
				Name:      "failures_total",
				Help:      "Booking confirmations that could not be delivered.",
			},
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.UploadDuration,
		p.LoginAttempts, p.GateDecisions, p.CacheLookups,
		p.BookingsTotal, p.NotifyFailures,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// The helpers below are nil-safe so components can run without metrics in tests.

func (p *Prom) ObserveUpload(driver string, d time.Duration, err error) {
	if p == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.UploadDuration.WithLabelValues(driver, result).Observe(d.Seconds())
}

func (p *Prom) IncLogin(result string) {
	if p == nil {
		return
	}
	p.LoginAttempts.WithLabelValues(result).Inc()
}

func (p *Prom) IncGate(decision string) {
	if p == nil {
		return
	}
	p.GateDecisions.WithLabelValues(decision).Inc()
}

func (p *Prom) IncCache(result string) {
	if p == nil {
		return
	}
	p.CacheLookups.WithLabelValues(result).Inc()
}

func (p *Prom) IncBooking() {
	if p == nil {
		return
	}
	p.BookingsTotal.Inc()
}

func (p *Prom) IncNotifyFailure() {
	if p == nil {
		return
	}
	p.NotifyFailures.Inc()
}
