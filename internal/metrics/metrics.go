// Package metrics exposes the operational counters that observe the
// dispatcher from the outside, in the same promauto-constructed-globals
// style the rest of the corpus uses. None of these gate correctness —
// they exist purely for visibility.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/opencoff/logsrv/internal/wire"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logsrv_requests_total",
		Help: "Total requests handled, by opcode and resulting status.",
	}, []string{"op", "status"})

	WriteDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logsrv_write_drops_total",
		Help: "Total WriteLog calls skipped because the message was below the logger's severity threshold.",
	})

	RenderTruncationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logsrv_render_truncations_total",
		Help: "Total rendered log lines that overran their buffer and were truncated.",
	})

	ConfigReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logsrv_config_reloads_total",
		Help: "Total logger-config reloads, by trigger and outcome.",
	}, []string{"trigger", "outcome"})
)

// ObserveRequest records one completed request.
func ObserveRequest(op wire.Op, status string) {
	RequestsTotal.WithLabelValues(op.String(), status).Inc()
}
