package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names used by the broker and HTTP layer.
const (
	ActiveConnections = "active_connections"
	ActiveRooms       = "active_rooms"
	MessagesPublished = "messages_published"
	MessagesDropped   = "messages_dropped"
)

type Provider interface {
	Incr(name string)
	Decr(name string)
}

// PromStats is a Provider backed by Prometheus collectors. Gauge-style
// names support Incr and Decr, counter-style names only Incr.
type PromStats struct {
	registry *prometheus.Registry
	gauges   map[string]prometheus.Gauge
	counters map[string]prometheus.Counter
}

func NewPromStats() *PromStats {
	s := &PromStats{
		registry: prometheus.NewRegistry(),
		gauges:   make(map[string]prometheus.Gauge),
		counters: make(map[string]prometheus.Counter),
	}

	s.registerGauge(ActiveConnections, "Number of active websocket connections.")
	s.registerGauge(ActiveRooms, "Number of rooms with at least one subscriber.")
	s.registerCounter(MessagesPublished, "Total messages delivered to subscribers.")
	s.registerCounter(MessagesDropped, "Total messages dropped on full client buffers.")

	return s
}

func (s *PromStats) registerGauge(name, help string) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chatterbox",
		Name:      name,
		Help:      help,
	})
	s.registry.MustRegister(g)
	s.gauges[name] = g
}

func (s *PromStats) registerCounter(name, help string) {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chatterbox",
		Name:      name + "_total",
		Help:      help,
	})
	s.registry.MustRegister(c)
	s.counters[name] = c
}

func (s *PromStats) Incr(name string) {
	if g, ok := s.gauges[name]; ok {
		g.Inc()
		return
	}
	if c, ok := s.counters[name]; ok {
		c.Inc()
	}
}

func (s *PromStats) Decr(name string) {
	if g, ok := s.gauges[name]; ok {
		g.Dec()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (s *PromStats) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
