// Package metrics wires the driver's initialization-time counters
// (spec §6) and a duration histogram to Prometheus, the way the
// teacher's admin API tracks request counts.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alxayo/go-handshake/internal/statem"
)

const (
	namespace = "handshake"
	subsystem = "driver"
)

// Sink implements statem.StatsSink against a Prometheus registry.
// Construct one per process and share it across every Driver.
type Sink struct {
	sessAccept             prometheus.Counter
	sessAcceptRenegotiate  prometheus.Counter
	sessConnect            prometheus.Counter
	sessConnectRenegotiate prometheus.Counter

	duration  prometheus.Histogram
	inFlight  prometheus.Gauge
}

// NewSink registers the driver's metrics against reg and returns a
// Sink. Pass prometheus.DefaultRegisterer for process-global metrics,
// or a fresh prometheus.NewRegistry() in tests to avoid collisions.
func NewSink(reg prometheus.Registerer) *Sink {
	factory := promauto.With(reg)

	s := &Sink{
		sessAccept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sess_accept_total",
			Help:      "Fresh server-role handshakes entered.",
		}),
		sessAcceptRenegotiate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sess_accept_renegotiate_total",
			Help:      "Server-role renegotiations entered.",
		}),
		sessConnect: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sess_connect_total",
			Help:      "Client-role handshakes entered, fresh or renegotiated.",
		}),
		sessConnectRenegotiate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sess_connect_renegotiate_total",
			Help:      "Client-role renegotiations entered.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "drive_seconds",
			Help:      "Wall-clock time spent inside a single Drive call.",
			Buckets:   prometheus.DefBuckets,
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "in_flight_sessions",
			Help:      "Sessions currently inside a Drive call (re-entrancy depth summed across sessions).",
		}),
	}
	return s
}

func (s *Sink) SessAccept()             { s.sessAccept.Inc() }
func (s *Sink) SessAcceptRenegotiate()  { s.sessAcceptRenegotiate.Inc() }
func (s *Sink) SessConnect()            { s.sessConnect.Inc() }
func (s *Sink) SessConnectRenegotiate() { s.sessConnectRenegotiate.Inc() }

// ObserveDrive records the duration of one Drive call and adjusts the
// in-flight gauge around it. Call via:
//
//	stop := sink.ObserveDrive()
//	result, err := driver.Drive(sess, role, transport)
//	stop()
func (s *Sink) ObserveDrive() func() {
	start := time.Now()
	s.inFlight.Inc()
	return func() {
		s.duration.Observe(time.Since(start).Seconds())
		s.inFlight.Dec()
	}
}

var _ statem.StatsSink = (*Sink)(nil)
