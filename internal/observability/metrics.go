package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/lockstep/internal/app"
	"github.com/bft-labs/lockstep/internal/domain"
)

const namespace = "lockstep"

// Metrics holds the collectors for one server instance. It implements
// app.SessionEmitter, app.TransferEmitter and app.StateEmitter.
type Metrics struct {
	sessionsActive  prometheus.Gauge
	sessionsClosed  *prometheus.CounterVec
	exchanges       prometheus.Counter
	sessionDuration prometheus.Histogram

	transfers     *prometheus.CounterVec
	transferBytes prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	ingestConns *prometheus.CounterVec

	state prometheus.Gauge
}

var (
	_ app.SessionEmitter  = (*Metrics)(nil)
	_ app.TransferEmitter = (*Metrics)(nil)
	_ app.StateEmitter    = (*Metrics)(nil)
)

// NewMetrics creates the collectors and registers them with reg.
// It panics if any collector is already registered, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Streaming sessions currently open.",
		}),
		sessionsClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "closed_total",
				Help:      "Streaming sessions closed, by reason.",
			},
			[]string{"reason"},
		),
		exchanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "exchanges_total",
			Help:      "Messages acknowledged across all sessions.",
		}),
		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "duration_seconds",
			Help:      "Streaming session lifetime in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "transfer",
				Name:      "total",
				Help:      "File transfers, by outcome.",
			},
			[]string{"outcome"},
		),
		transferBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "bytes_total",
			Help:      "Bytes written by successful transfers.",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ingestConns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "connections_total",
				Help:      "Raw TCP ingest connections, by outcome.",
			},
			[]string{"outcome"},
		),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "server_state",
			Help:      "Server lifecycle state (0 stopped, 1 starting, 2 serving, 3 draining, 4 failed).",
		}),
	}

	reg.MustRegister(
		m.sessionsActive, m.sessionsClosed, m.exchanges, m.sessionDuration,
		m.transfers, m.transferBytes,
		m.httpRequests, m.httpDuration,
		m.ingestConns, m.state,
	)
	return m
}

func (m *Metrics) OnSessionOpened(id uint64, remote string) {
	m.sessionsActive.Inc()
}

func (m *Metrics) OnExchange(id, exchanges uint64) {
	m.exchanges.Inc()
}

func (m *Metrics) OnSessionClosed(id, exchanges uint64, reason domain.CloseReason, elapsed time.Duration) {
	m.sessionsActive.Dec()
	m.sessionsClosed.WithLabelValues(string(reason)).Inc()
	m.sessionDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) OnTransferStored(result domain.TransferResult, elapsed time.Duration) {
	m.transfers.WithLabelValues("stored").Inc()
	m.transferBytes.Add(float64(result.Size))
}

func (m *Metrics) OnTransferFailed(fileName string, err error) {
	m.transfers.WithLabelValues("failed").Inc()
}

func (m *Metrics) OnStateChange(previous, current app.State, reason string) {
	m.state.Set(float64(current))
}

// RecordHTTPRequest counts one request and observes its duration.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusLabel := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	m.httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordIngest counts one raw ingest connection.
func (m *Metrics) RecordIngest(outcome string) {
	m.ingestConns.WithLabelValues(outcome).Inc()
}
