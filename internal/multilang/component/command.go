package component

// LogLevel 对端日志级别
type LogLevel int

const (
	LogTrace LogLevel = iota
	LogDebug
	LogInfo
	LogWarn
	LogError
)

// SendCommand 复制 opts 后设置 command 字段再发送。
// opts 中已有的 command 会被覆盖，opts 本身不会被修改
func (c *Component) SendCommand(name string, opts map[string]any) error {
	msg := make(map[string]any, len(opts)+1)
	for k, v := range opts {
		msg[k] = v
	}
	msg["command"] = name
	return c.send(msg)
}

// Sync 回复心跳，或通知 spout 本轮命令处理完毕
func (c *Component) Sync() error {
	return c.SendCommand("sync", nil)
}

// Log 将日志写入对端的 worker 日志
func (c *Component) Log(msg string, level LogLevel) error {
	return c.SendCommand("log", map[string]any{
		"msg":   msg,
		"level": int(level),
	})
}

// ReportError 向对端报告组件错误
func (c *Component) ReportError(msg string) error {
	return c.SendCommand("error", map[string]any{"msg": msg})
}
