package component

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/9triver/multilang/internal/multilang/message"
	"github.com/sirupsen/logrus"
)

// PidFileFunc 在 pidDir 下创建以 pid 命名的文件，作为 worker 就绪的信号
type PidFileFunc func(pidDir string, pid int) error

// CreatePidFile 以追加模式打开 pidDir/pid，不存在则创建，不截断已有内容
func CreatePidFile(pidDir string, pid int) error {
	path := filepath.Join(pidDir, strconv.Itoa(pid))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create pid file: %w", err)
	}
	return f.Close()
}

// Initialize 完成一次性握手：读取第一条命令，回复 pid，创建 pid 文件
func (c *Component) Initialize() (*message.Handshake, error) {
	if c.initialized.Load() {
		return nil, fmt.Errorf("%w: handshake: already initialized", message.ErrProtocol)
	}

	cmd, err := c.ReadCommand()
	if err != nil {
		return nil, err
	}
	hs, err := message.HandshakeFromCommand(cmd)
	if err != nil {
		return nil, err
	}

	pid := c.getpid()
	if err := c.send(map[string]any{"pid": pid}); err != nil {
		return nil, err
	}
	if err := c.pidFile(hs.PidDir, pid); err != nil {
		return nil, err
	}
	c.initialized.Store(true)

	logrus.WithFields(logrus.Fields{
		"pid":    pid,
		"pidDir": hs.PidDir,
	}).Info("Multilang handshake completed")
	return hs, nil
}
