package rfbserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/coder/rfbserver/rfb"
)

// Metrics holds the server's prometheus counters. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	connections       prometheus.Counter
	handshakeFailures prometheus.Counter
	updatesSent       prometheus.Counter
	updateBytes       prometheus.Counter
}

// NewMetrics registers the server counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		connections: factory.NewCounter(prometheus.CounterOpts{
			Name: "rfb_connections_total",
			Help: "Connections that completed the RFB handshake.",
		}),
		handshakeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "rfb_handshake_failures_total",
			Help: "Connections that failed version, security, or init negotiation.",
		}),
		updatesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "rfb_framebuffer_updates_total",
			Help: "Framebuffer update messages sent.",
		}),
		updateBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "rfb_framebuffer_update_bytes_total",
			Help: "Encoded framebuffer payload bytes sent.",
		}),
	}
}

func (m *Metrics) connection() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) handshakeFailure() {
	if m == nil {
		return
	}
	m.handshakeFailures.Inc()
}

func (m *Metrics) update(fbu rfb.FramebufferUpdate) {
	if m == nil {
		return
	}
	m.updatesSent.Inc()
	var n int
	for _, rect := range fbu.Rectangles {
		n += len(rect.Data.Encode())
	}
	m.updateBytes.Add(float64(n))
}
