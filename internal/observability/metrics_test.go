package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/lockstep/internal/app"
	"github.com/bft-labs/lockstep/internal/domain"
)

// sample returns the value of the named metric whose labels match.
func sample(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if !labelsMatch(m.GetLabel(), labels) {
				continue
			}
			switch {
			case m.Counter != nil:
				return m.GetCounter().GetValue()
			case m.Gauge != nil:
				return m.GetGauge().GetValue()
			case m.Histogram != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, p := range pairs {
		if want[p.GetName()] != p.GetValue() {
			return false
		}
	}
	return true
}

func TestMetrics_Sessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.OnSessionOpened(1, "a")
	m.OnSessionOpened(2, "b")
	m.OnExchange(1, 1)
	m.OnExchange(1, 2)
	m.OnExchange(2, 1)
	m.OnSessionClosed(1, 2, domain.ClosePeer, time.Second)

	assert.Equal(t, 1.0, sample(t, reg, "lockstep_session_active", nil))
	assert.Equal(t, 3.0, sample(t, reg, "lockstep_session_exchanges_total", nil))
	assert.Equal(t, 1.0, sample(t, reg, "lockstep_session_closed_total", map[string]string{"reason": "peer_closed"}))
	assert.Equal(t, 1.0, sample(t, reg, "lockstep_session_duration_seconds", nil))
}

func TestMetrics_Transfers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.OnTransferStored(domain.TransferResult{FileName: "a", Size: 10}, time.Millisecond)
	m.OnTransferStored(domain.TransferResult{FileName: "b", Size: 5}, time.Millisecond)
	m.OnTransferFailed("c", errors.New("boom"))

	assert.Equal(t, 2.0, sample(t, reg, "lockstep_transfer_total", map[string]string{"outcome": "stored"}))
	assert.Equal(t, 1.0, sample(t, reg, "lockstep_transfer_total", map[string]string{"outcome": "failed"}))
	assert.Equal(t, 15.0, sample(t, reg, "lockstep_transfer_bytes_total", nil))
}

func TestMetrics_StateAndIngest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.OnStateChange(app.StateStarting, app.StateServing, "listening")
	m.RecordIngest("stored")
	m.RecordIngest("stored")

	assert.Equal(t, float64(app.StateServing), sample(t, reg, "lockstep_server_state", nil))
	assert.Equal(t, 2.0, sample(t, reg, "lockstep_ingest_connections_total", map[string]string{"outcome": "stored"}))
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}
