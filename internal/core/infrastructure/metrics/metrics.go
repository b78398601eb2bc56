// Package metrics exports indexer measurements to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	metricsInterface "github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/metrics"
)

const namespace = "hapi"

// States are the indexer state names exposed on the state gauge
var States = []string{"init", "check_for_updates", "processing", "waiting", "stopped"}

// Prometheus implements metrics.Recorder with a private registry
type Prometheus struct {
	registry *prometheus.Registry

	state         *prometheus.GaugeVec
	jobs          *prometheus.CounterVec
	webhookPushes *prometheus.CounterVec
	cursorHeight  prometheus.Gauge
	queueLength   prometheus.Gauge
}

var _ metricsInterface.Recorder = (*Prometheus)(nil)

// NewPrometheus registers the indexer collectors, labelled with network
func NewPrometheus(network string) *Prometheus {
	labels := prometheus.Labels{"network": network}
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "indexer",
			Name:        "state",
			Help:        "1 for the current indexer state, 0 otherwise",
			ConstLabels: labels,
		}, []string{"state"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "indexer",
			Name:        "jobs_processed_total",
			Help:        "Jobs handled, by kind and result",
			ConstLabels: labels,
		}, []string{"kind", "result"}),
		webhookPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "indexer",
			Name:        "webhook_pushes_total",
			Help:        "Webhook deliveries, by event and result",
			ConstLabels: labels,
		}, []string{"event", "result"}),
		cursorHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "indexer",
			Name:        "cursor_height",
			Help:        "Block height of the indexer cursor",
			ConstLabels: labels,
		}),
		queueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "indexer",
			Name:        "queue_length",
			Help:        "Jobs waiting to be processed",
			ConstLabels: labels,
		}),
	}
	p.registry.MustRegister(
		p.state,
		p.jobs,
		p.webhookPushes,
		p.cursorHeight,
		p.queueLength,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry returns the registry to serve and to register extra collectors on
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) SetState(name string) {
	for _, s := range States {
		v := 0.0
		if s == name {
			v = 1
		}
		p.state.WithLabelValues(s).Set(v)
	}
}

func (p *Prometheus) JobProcessed(kind string, err error) {
	p.jobs.WithLabelValues(kind, result(err)).Inc()
}

func (p *Prometheus) WebhookPushed(event string, err error) {
	p.webhookPushes.WithLabelValues(event, result(err)).Inc()
}

func (p *Prometheus) SetCursorHeight(height uint64) {
	p.cursorHeight.Set(float64(height))
}

func (p *Prometheus) SetQueueLength(n int) {
	p.queueLength.Set(float64(n))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Nop discards every measurement
type Nop struct{}

func (Nop) SetState(string)             {}
func (Nop) JobProcessed(string, error)  {}
func (Nop) WebhookPushed(string, error) {}
func (Nop) SetCursorHeight(uint64)      {}
func (Nop) SetQueueLength(int)          {}
