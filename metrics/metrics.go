package metrics

import (
	"net/http"

	model "github.com/Itish41/COIDashboard/models"
	services "github.com/Itish41/COIDashboard/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes store state as prometheus gauges and counters.
type Metrics struct {
	registry *prometheus.Registry

	coisByStatus  *prometheus.GaugeVec
	selectionSize prometheus.Gauge
	mutations     *prometheus.CounterVec
	reminders     prometheus.Counter
}

var _ services.StoreObserver = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		coisByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "coi",
			Name:      "records",
			Help:      "Number of stored certificates by status.",
		}, []string{"status"}),
		selectionSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coi",
			Name:      "selection_size",
			Help:      "Number of currently selected certificates.",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coi",
			Name:      "store_mutations_total",
			Help:      "Store changes by operation.",
		}, []string{"op"}),
		reminders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coi",
			Name:      "reminders_sent_total",
			Help:      "Certificates marked as reminded.",
		}),
	}
	m.registry.MustRegister(
		m.coisByStatus,
		m.selectionSize,
		m.mutations,
		m.reminders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) CollectionChanged(op string, cois []model.COI) {
	counts := make(map[model.COIStatus]int, len(model.AllStatuses))
	for _, c := range cois {
		counts[c.Status]++
	}
	for _, s := range model.AllStatuses {
		m.coisByStatus.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
	m.mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) SelectionChanged(size int) {
	m.selectionSize.Set(float64(size))
}

func (m *Metrics) RemindersSent(n int) {
	m.reminders.Add(float64(n))
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
