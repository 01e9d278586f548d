package metrics

import (
	"time"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus is a Recorder backed by github.com/prometheus/client_golang.
// Register it against the collector registry the caller's diagnostics
// server (or any exporter) exposes.
type Prometheus struct {
	messagesSent     *prometheus.CounterVec
	messagesReceived *prometheus.CounterVec
	channelDepth     *prometheus.GaugeVec
	waitForAny       *prometheus.HistogramVec
	initialize       *prometheus.HistogramVec
}

// NewPrometheus constructs a Prometheus recorder and registers its
// collectors against reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grouptopo_messages_sent_total",
			Help: "Framed messages handed to the Sender, by group/operator/kind.",
		}, []string{"group", "operator", "kind"}),
		messagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grouptopo_messages_received_total",
			Help: "Framed messages accepted by on_message, by group/operator/source.",
		}, []string{"group", "operator", "source"}),
		channelDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "grouptopo_node_channel_depth",
			Help: "Queued payload lists per peer mailbox.",
		}, []string{"group", "operator", "peer"}),
		waitForAny: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grouptopo_wait_for_any_duration_seconds",
			Help:    "Time spent blocked in wait_for_any.",
			Buckets: prometheus.DefBuckets,
		}, []string{"group", "operator"}),
		initialize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grouptopo_initialize_duration_seconds",
			Help:    "Time spent resolving peers in Initialize.",
			Buckets: prometheus.DefBuckets,
		}, []string{"group", "operator"}),
	}
	reg.MustRegister(p.messagesSent, p.messagesReceived, p.channelDepth, p.waitForAny, p.initialize)
	return p
}

func (p *Prometheus) MessageSent(group ids.GroupName, operator ids.OperatorName, kind string) {
	p.messagesSent.WithLabelValues(string(group), string(operator), kind).Inc()
}

func (p *Prometheus) MessageReceived(group ids.GroupName, operator ids.OperatorName, source ids.TaskID) {
	p.messagesReceived.WithLabelValues(string(group), string(operator), string(source)).Inc()
}

func (p *Prometheus) ChannelDepth(group ids.GroupName, operator ids.OperatorName, peer ids.TaskID, depth int) {
	p.channelDepth.WithLabelValues(string(group), string(operator), string(peer)).Set(float64(depth))
}

func (p *Prometheus) ObserveWaitForAny(group ids.GroupName, operator ids.OperatorName, d time.Duration) {
	p.waitForAny.WithLabelValues(string(group), string(operator)).Observe(d.Seconds())
}

func (p *Prometheus) ObserveInitialize(group ids.GroupName, operator ids.OperatorName, d time.Duration) {
	p.initialize.WithLabelValues(string(group), string(operator)).Observe(d.Seconds())
}

var _ Recorder = (*Prometheus)(nil)
