package component

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 协议层指标，协议 goroutine 写入，/metrics 接口读取
type Metrics struct {
	FramesReceived  prometheus.Counter
	FramesSent      prometheus.Counter
	Tuples          prometheus.Counter
	PendingCommands prometheus.Gauge
	PendingTaskIDs  prometheus.Gauge
}

// NewMetrics 创建未注册的指标，需要暴露时调用 Register
func NewMetrics() *Metrics {
	return &Metrics{
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "multilang",
			Subsystem: "protocol",
			Name:      "frames_received_total",
			Help:      "Total number of frames read from the orchestrator",
		}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "multilang",
			Subsystem: "protocol",
			Name:      "frames_sent_total",
			Help:      "Total number of frames written to the orchestrator",
		}),
		Tuples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "multilang",
			Subsystem: "protocol",
			Name:      "tuples_total",
			Help:      "Total number of tuples decoded",
		}),
		PendingCommands: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "multilang",
			Subsystem: "protocol",
			Name:      "pending_commands",
			Help:      "Commands buffered while waiting for a task id list",
		}),
		PendingTaskIDs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "multilang",
			Subsystem: "protocol",
			Name:      "pending_task_ids",
			Help:      "Task id lists buffered while waiting for a command",
		}),
	}
}

// Register 将全部指标注册到 reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.FramesReceived,
		m.FramesSent,
		m.Tuples,
		m.PendingCommands,
		m.PendingTaskIDs,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
