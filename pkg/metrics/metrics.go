// Package metrics exposes the bot's Prometheus metrics
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Namespace prefixes every metric name
const Namespace = "jinbot"

// Send outcomes
const (
	SentPhoto    = "photo"
	SentDocument = "document"
	SentFailed   = "failed"
	SentEmpty    = "empty"
)

// Collector owns a registry and the bot's metrics. A nil *Collector is
// valid and records nothing.
type Collector struct {
	logger   zerolog.Logger
	registry *prometheus.Registry

	memesSent      *prometheus.CounterVec
	likes          *prometheus.CounterVec
	updates        *prometheus.CounterVec
	commands       *prometheus.CounterVec
	memesAvailable prometheus.Gauge
	postInterval   prometheus.Gauge
}

// NewCollector creates a collector with its own registry. Go runtime and
// process metrics are included.
func NewCollector(logger zerolog.Logger) *Collector {
	c := &Collector{
		logger:   logger.With().Str("component", "metrics").Logger(),
		registry: prometheus.NewRegistry(),
	}

	c.memesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "memes_sent_total",
			Help:      "Memes posted to a chat, by outcome",
		},
		[]string{"outcome"},
	)
	c.likes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "likes_total",
			Help:      "Reactions recorded, by reaction",
		},
		[]string{"reaction"},
	)
	c.updates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "updates_total",
			Help:      "Telegram updates received, by kind",
		},
		[]string{"kind"},
	)
	c.commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_total",
			Help:      "Bot commands handled, by command",
		},
		[]string{"command"},
	)
	c.memesAvailable = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "memes_available",
		Help:      "Memes currently in the library",
	})
	c.postInterval = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "post_interval_minutes",
		Help:      "Current scheduled posting interval",
	})

	c.registry.MustRegister(
		c.memesSent,
		c.likes,
		c.updates,
		c.commands,
		c.memesAvailable,
		c.postInterval,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.logger.Debug().Msg("Metrics collector initialized")
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorLog: promLogger{logger: c.logger},
	})
}

// MemeSent counts a post attempt
func (c *Collector) MemeSent(outcome string) {
	if c == nil {
		return
	}
	c.memesSent.WithLabelValues(outcome).Inc()
}

// Like counts a recorded reaction
func (c *Collector) Like(reaction string) {
	if c == nil {
		return
	}
	c.likes.WithLabelValues(reaction).Inc()
}

// Update counts a received update
func (c *Collector) Update(kind string) {
	if c == nil {
		return
	}
	c.updates.WithLabelValues(kind).Inc()
}

// Command counts a handled command
func (c *Collector) Command(name string) {
	if c == nil {
		return
	}
	c.commands.WithLabelValues(name).Inc()
}

// SetMemesAvailable records the library size
func (c *Collector) SetMemesAvailable(n int) {
	if c == nil {
		return
	}
	c.memesAvailable.Set(float64(n))
}

// SetPostInterval records the posting interval in minutes
func (c *Collector) SetPostInterval(minutes int) {
	if c == nil {
		return
	}
	c.postInterval.Set(float64(minutes))
}

// promLogger adapts zerolog to promhttp's error logger
type promLogger struct {
	logger zerolog.Logger
}

func (l promLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
