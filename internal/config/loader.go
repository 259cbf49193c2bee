package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// LoadConfig 从文件加载配置并应用默认值；文件不存在时全部使用默认值
func LoadConfig(file string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// ApplyDefaults 为配置项设置默认值
func ApplyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.Component == "" {
		cfg.Component = ComponentSplitBolt
	}

	cfg.Database.ApplyDefaults(cfg.DataDir)
	cfg.Logging.ApplyDefaults(cfg.DataDir)

	if cfg.Protocol.QueueWatermark == 0 {
		cfg.Protocol.QueueWatermark = 1024
	}
	if cfg.Status.Port == 0 {
		cfg.Status.Port = 9464
	}
}

// Validate 检查组件名
func (c *Config) Validate() error {
	switch c.Component {
	case ComponentSentenceSpout, ComponentSplitBolt, ComponentCountBolt:
		return nil
	default:
		return fmt.Errorf("unknown component %q", c.Component)
	}
}
