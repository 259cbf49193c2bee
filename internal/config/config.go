package config

import (
	"github.com/9triver/multilang/internal/infra/database"
	"github.com/9triver/multilang/internal/infra/logging"
)

const (
	ComponentSentenceSpout = "sentence-spout"
	ComponentSplitBolt     = "split-bolt"
	ComponentCountBolt     = "count-bolt"
)

// Config worker 配置
type Config struct {
	Component string `yaml:"component"` // sentence-spout / split-bolt / count-bolt
	DataDir   string `yaml:"data_dir"`  // e.g., "./data"

	// 基础设施配置
	Database database.Config `yaml:"database"`
	Logging  logging.Config  `yaml:"logging"`

	Protocol ProtocolConfig `yaml:"protocol"`
	Status   StatusConfig   `yaml:"status"`
}

// ProtocolConfig 协议与运行循环配置
type ProtocolConfig struct {
	QueueWatermark int   `yaml:"queue_watermark"` // 待处理队列告警阈值，-1 关闭告警
	AutoAck        *bool `yaml:"auto_ack"`        // default: true
	AutoFail       *bool `yaml:"auto_fail"`       // default: true
	ReportErrors   *bool `yaml:"report_errors"`   // default: true
}

// StatusConfig 状态接口配置
type StatusConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"` // e.g., 9464
}

// IsAutoAck 等方法读取可选布尔项，未设置时为 true
func (p ProtocolConfig) IsAutoAck() bool      { return boolOr(p.AutoAck, true) }
func (p ProtocolConfig) IsAutoFail() bool     { return boolOr(p.AutoFail, true) }
func (p ProtocolConfig) IsReportErrors() bool { return boolOr(p.ReportErrors, true) }

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Watermark 返回传给 component.WithQueueWatermark 的值
func (p ProtocolConfig) Watermark() int {
	if p.QueueWatermark < 0 {
		return 0
	}
	return p.QueueWatermark
}
