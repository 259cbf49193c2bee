package logging

// Config 日志配置
type Config struct {
	Level         string `yaml:"level"`          // 本地日志级别：trace/debug/info/warn/error
	Dir           string `yaml:"dir"`            // 日志文件目录，为空时只输出到 stderr
	FilePrefix    string `yaml:"file_prefix"`    // 日志文件名前缀：<prefix>-YYYYMMDD.log
	RetentionDays int    `yaml:"retention_days"` // 保留天数
	Forward       bool   `yaml:"forward"`        // 是否通过 log 命令转发给编排器
	ForwardLevel  string `yaml:"forward_level"`  // 转发的最低级别
}

// ApplyDefaults 为配置项设置默认值
func (c *Config) ApplyDefaults(dataDir string) {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Dir == "" {
		c.Dir = dataDir + "/logs"
	}
	if c.FilePrefix == "" {
		c.FilePrefix = "multilang"
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = 3
	}
	if c.ForwardLevel == "" {
		c.ForwardLevel = "warn"
	}
}
