package database

// Config 数据库配置
type Config struct {
	// WordCountDBPath 单词计数数据库路径
	WordCountDBPath string `yaml:"wordcount_db_path"` // e.g., "./data/wordcount.db"

	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max_open_conns"` // default: 1

	// MaxIdleConns 最大空闲连接数
	MaxIdleConns int `yaml:"max_idle_conns"` // default: 1

	// ConnMaxLifetimeSeconds 连接最大生命周期（秒）
	ConnMaxLifetimeSeconds int `yaml:"conn_max_lifetime_seconds"` // default: 300 (5 minutes)
}

// ApplyDefaults 为配置项设置默认值。
// worker 是单线程模型，SQLite 只需要一个连接
func (c *Config) ApplyDefaults(dataDir string) {
	if c.WordCountDBPath == "" {
		c.WordCountDBPath = dataDir + "/wordcount.db"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 1
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 1
	}
	if c.ConnMaxLifetimeSeconds == 0 {
		c.ConnMaxLifetimeSeconds = 300
	}
}
