package component

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogHook 将 logrus 日志以 log 命令转发给对端。
// 握手完成前对端只接受 pid 回复，此时的日志只写本地输出，不转发。
// 可以在任意 goroutine 中触发，帧的写入由传输层串行化；
// 发送路径上不打日志，因此不会递归
type LogHook struct {
	c        *Component
	minLevel logrus.Level
}

// NewLogHook 创建日志转发 hook，只转发级别不低于 minLevel 的日志
func NewLogHook(c *Component, minLevel logrus.Level) *LogHook {
	return &LogHook{c: c, minLevel: minLevel}
}

func (h *LogHook) Levels() []logrus.Level {
	levels := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		// logrus 中数值越小级别越高
		if l <= h.minLevel {
			levels = append(levels, l)
		}
	}
	return levels
}

func (h *LogHook) Fire(entry *logrus.Entry) error {
	if !h.c.Initialized() {
		return nil
	}
	return h.c.Log(formatEntry(entry), logrusLevelToProtocol(entry.Level))
}

func formatEntry(entry *logrus.Entry) string {
	if len(entry.Data) == 0 {
		return entry.Message
	}
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(entry.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	return b.String()
}

func logrusLevelToProtocol(level logrus.Level) LogLevel {
	switch level {
	case logrus.TraceLevel:
		return LogTrace
	case logrus.DebugLevel:
		return LogDebug
	case logrus.InfoLevel:
		return LogInfo
	case logrus.WarnLevel:
		return LogWarn
	default:
		return LogError
	}
}
