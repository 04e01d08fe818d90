// Package metrics exposes Prometheus instrumentation for the command engine
// and the network relay.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tetris"

// Metrics holds every collector. A nil *Metrics is valid and records nothing,
// so offline games run without a registry.
type Metrics struct {
	commands   *prometheus.CounterVec
	broadcasts prometheus.Counter
	relayed    prometheus.Counter
	desyncs    prometheus.Counter
	peers      prometheus.Gauge
	matches    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_executed_total",
			Help:      "Commands applied to units, by kind.",
		}, []string{"op"}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_broadcast_total",
			Help:      "Locally originated commands sent to peers.",
		}),
		relayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_relayed_total",
			Help:      "Frames the host forwarded from one peer to the others.",
		}),
		desyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "desyncs_total",
			Help:      "Commands rejected because replicated state diverged.",
		}),
		peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peers_connected",
			Help:      "Open peer connections.",
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finished_total",
			Help:      "Finished matches, by mode.",
		}, []string{"mode"}),
	}
	reg.MustRegister(m.commands, m.broadcasts, m.relayed, m.desyncs, m.peers, m.matches)
	return m
}

func (m *Metrics) CommandExecuted(op string) {
	if m != nil {
		m.commands.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) Broadcast() {
	if m != nil {
		m.broadcasts.Inc()
	}
}

func (m *Metrics) Relayed() {
	if m != nil {
		m.relayed.Inc()
	}
}

func (m *Metrics) Desync() {
	if m != nil {
		m.desyncs.Inc()
	}
}

func (m *Metrics) PeerConnected() {
	if m != nil {
		m.peers.Inc()
	}
}

func (m *Metrics) PeerDisconnected() {
	if m != nil {
		m.peers.Dec()
	}
}

func (m *Metrics) MatchFinished(mode string) {
	if m != nil {
		m.matches.WithLabelValues(mode).Inc()
	}
}

// Serve exposes /metrics for gatherer on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics available", "addr", addr, "path", "/metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
