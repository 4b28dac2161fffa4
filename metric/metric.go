// Package metric provides Prometheus metrics collection and monitoring.
package metric

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/cpu"
)

// systemMetricsInterval is how often system-level gauges are refreshed.
const systemMetricsInterval = 5 * time.Second

// Metrics contains the Prometheus metrics server and registered custom metrics.
type Metrics struct {
	httpServer *http.Server
	config     Config

	peerLinks     prometheus.Gauge
	subscriptions prometheus.Gauge
	cpuUsage      prometheus.Gauge
	memoryUsage   prometheus.Gauge

	signalingMessages *prometheus.CounterVec
	chatMessages      *prometheus.CounterVec
	glareResolutions  prometheus.Counter
}

// New creates a new Metrics instance with the specified configuration.
func New(config Config) *Metrics {
	return &Metrics{
		config: config,
		peerLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "peer_links_total",
			Help: "Current number of peer links.",
		}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_subscriptions_total",
			Help: "Current number of signaling subscriptions.",
		}),
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cpu_usage_percentage",
			Help: "CPU usage percentage.",
		}),
		memoryUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memory_usage_bytes",
			Help: "Current memory usage in bytes.",
		}),
		signalingMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signaling_messages_total",
			Help: "Signaling messages handled, by kind and direction.",
		}, []string{"kind", "direction"}), // Kind: "offer", "answer" or "candidate"
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat messages handled, by direction.",
		}, []string{"direction"}), // Direction: "sent" or "received"
		glareResolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glare_resolutions_total",
			Help: "Simultaneous offer collisions resolved.",
		}),
	}
}

// RegisterMetrics registers custom metrics with Prometheus.
func (m *Metrics) RegisterMetrics() {
	prometheus.MustRegister(m.peerLinks)
	prometheus.MustRegister(m.subscriptions)
	prometheus.MustRegister(m.cpuUsage)
	prometheus.MustRegister(m.memoryUsage)
	prometheus.MustRegister(m.signalingMessages)
	prometheus.MustRegister(m.chatMessages)
	prometheus.MustRegister(m.glareResolutions)
}

// Start initializes and starts the metrics HTTP server.
func (m *Metrics) Start() {
	m.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", m.config.Port),
		Handler: promhttp.Handler(),
	}

	go func() {
		log.Printf("Starting metrics server on port %d at path %s", m.config.Port, m.config.Path)
		if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting metrics server: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (m *Metrics) Stop() error {
	if m.httpServer != nil {
		log.Printf("Stopping metrics server on port %d", m.config.Port)
		return m.httpServer.Close()
	}
	return nil
}

// UpdateSystemMetrics collects and updates system-level metrics periodically.
func (m *Metrics) UpdateSystemMetrics() {
	go func() {
		for {
			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)
			m.memoryUsage.Set(float64(memStats.Alloc))

			percentages, err := cpu.Percent(0, false)
			if err != nil {
				log.Printf("Error collecting CPU usage: %v", err)
			} else if len(percentages) > 0 {
				m.cpuUsage.Set(percentages[0])
			}

			time.Sleep(systemMetricsInterval)
		}
	}()
}

// IncrementPeerLinks increments the peer link count.
func (m *Metrics) IncrementPeerLinks() {
	m.peerLinks.Inc()
}

// DecrementPeerLinks decrements the peer link count.
func (m *Metrics) DecrementPeerLinks() {
	m.peerLinks.Dec()
}

// IncrementSubscriptions increments the signaling subscription count.
func (m *Metrics) IncrementSubscriptions() {
	m.subscriptions.Inc()
}

// DecrementSubscriptions decrements the signaling subscription count.
func (m *Metrics) DecrementSubscriptions() {
	m.subscriptions.Dec()
}

// CountSignalingMessage counts one handled signaling message.
func (m *Metrics) CountSignalingMessage(kind, direction string) {
	m.signalingMessages.WithLabelValues(kind, direction).Inc()
}

// CountChatMessage counts one handled chat message.
func (m *Metrics) CountChatMessage(direction string) {
	m.chatMessages.WithLabelValues(direction).Inc()
}

// CountGlareResolution counts one resolved offer collision.
func (m *Metrics) CountGlareResolution() {
	m.glareResolutions.Inc()
}
