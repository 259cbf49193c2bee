package util

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const dateLayout = "20060102"

// FileHook logrus Hook 实现，用于将日志写入文件
type FileHook struct {
	file      *os.File
	formatter logrus.Formatter
	mu        sync.Mutex
}

// UpdateFile 更新文件句柄（用于日志轮换），旧文件会被关闭
func (hook *FileHook) UpdateFile(newFile *os.File) {
	hook.mu.Lock()
	defer hook.mu.Unlock()

	if hook.file != nil {
		hook.file.Close()
	}
	hook.file = newFile
}

// Levels 返回 Hook 要处理的日志级别
func (hook *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire 写入日志到文件
func (hook *FileHook) Fire(entry *logrus.Entry) error {
	hook.mu.Lock()
	defer hook.mu.Unlock()

	if hook.file == nil {
		return nil
	}
	if hook.formatter == nil {
		hook.formatter = newTextFormatter(true)
	}
	line, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}

	_, err = hook.file.Write(line)
	return err
}

// Close 关闭文件
func (hook *FileHook) Close() error {
	hook.mu.Lock()
	defer hook.mu.Unlock()

	if hook.file != nil {
		err := hook.file.Close()
		hook.file = nil
		return err
	}
	return nil
}

func newTextFormatter(disableColors bool) *logrus.TextFormatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
		DisableColors:   disableColors,
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			return frame.Function, ""
		},
	}
}

// InitLogger 初始化日志系统。stdout 是协议通道，日志只能写到 stderr
func InitLogger(level string) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(newTextFormatter(false))
	logrus.SetReportCaller(true)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// RotatingFile 按天轮换的日志文件：<dir>/<prefix>-YYYYMMDD.log
type RotatingFile struct {
	dir      string
	prefix   string
	keepDays int

	mu   sync.Mutex
	hook *FileHook
	file *os.File
	path string
	date string

	stop chan struct{}
	done chan struct{}
}

// InitLoggerWithFile 为全局 logrus 增加文件输出，并启动轮换与清理任务。
// 返回的 RotatingFile 需要在退出时 Close
func InitLoggerWithFile(logDir, prefix string, keepDays int) (*RotatingFile, error) {
	rf, err := OpenRotatingFile(logDir, prefix, keepDays)
	if err != nil {
		return nil, err
	}
	logrus.AddHook(rf.Hook())
	rf.start()

	// 直接写 stderr，避免触发 logrus
	fmt.Fprintf(os.Stderr, "Logging to file: %s (keeping %d days of logs)\n", rf.Path(), keepDays)
	return rf, nil
}

// OpenRotatingFile 创建日志目录并打开当天的日志文件
func OpenRotatingFile(logDir, prefix string, keepDays int) (*RotatingFile, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	rf := &RotatingFile{
		dir:      logDir,
		prefix:   prefix,
		keepDays: keepDays,
		hook:     &FileHook{formatter: newTextFormatter(true)},
	}
	if err := rf.rotate(time.Now()); err != nil {
		return nil, err
	}
	return rf, nil
}

// Hook 返回写入当前文件的 logrus hook
func (rf *RotatingFile) Hook() *FileHook {
	return rf.hook
}

// Path 当前日志文件路径
func (rf *RotatingFile) Path() string {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.path
}

func (rf *RotatingFile) fileName(date string) string {
	return filepath.Join(rf.dir, fmt.Sprintf("%s-%s.log", rf.prefix, date))
}

// rotate 日期变化时切换到新文件
func (rf *RotatingFile) rotate(now time.Time) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	date := now.Format(dateLayout)
	if rf.date == date && rf.file != nil {
		return nil
	}

	path := rf.fileName(date)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	// UpdateFile 会关闭旧文件
	rf.hook.UpdateFile(file)
	rf.file = file
	rf.path = path
	rf.date = date
	return nil
}

// cleanup 删除超过保留天数的 <prefix>-YYYYMMDD.log
func (rf *RotatingFile) cleanup(now time.Time) error {
	entries, err := os.ReadDir(rf.dir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := now.AddDate(0, 0, -rf.keepDays).Format(dateLayout)
	head := rf.prefix + "-"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, head) || !strings.HasSuffix(name, ".log") {
			continue
		}
		date := strings.TrimSuffix(strings.TrimPrefix(name, head), ".log")
		if len(date) != len(dateLayout) {
			continue
		}
		// YYYYMMDD 可以直接按字符串比较
		if date < cutoff {
			path := filepath.Join(rf.dir, name)
			if err := os.Remove(path); err != nil {
				logrus.Warnf("Failed to delete old log file %s: %v", path, err)
			} else {
				logrus.Infof("Deleted old log file: %s", path)
			}
		}
	}
	return nil
}

func (rf *RotatingFile) start() {
	rf.stop = make(chan struct{})
	rf.done = make(chan struct{})

	go func() {
		defer close(rf.done)

		rotateTicker := time.NewTicker(time.Hour)
		defer rotateTicker.Stop()
		cleanupTicker := time.NewTicker(24 * time.Hour)
		defer cleanupTicker.Stop()

		if err := rf.cleanup(time.Now()); err != nil {
			logrus.Warnf("Failed to cleanup old logs: %v", err)
		}

		for {
			select {
			case <-rotateTicker.C:
				if err := rf.rotate(time.Now()); err != nil {
					logrus.Errorf("Failed to rotate log file: %v", err)
				}
			case <-cleanupTicker.C:
				if err := rf.cleanup(time.Now()); err != nil {
					logrus.Warnf("Failed to cleanup old logs: %v", err)
				}
			case <-rf.stop:
				return
			}
		}
	}()
}

// Close 停止轮换任务并关闭文件
func (rf *RotatingFile) Close() error {
	if rf.stop != nil {
		close(rf.stop)
		<-rf.done
		rf.stop = nil
	}

	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.file = nil
	rf.path = ""
	rf.date = ""
	return rf.hook.Close()
}
