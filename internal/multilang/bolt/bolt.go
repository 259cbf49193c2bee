// Package bolt 驱动用户实现的 bolt：握手、逐条处理元组、应答心跳以及 ack/fail。
package bolt

import (
	"errors"
	"fmt"

	"github.com/9triver/multilang/internal/multilang/component"
	"github.com/9triver/multilang/internal/multilang/message"
	"github.com/sirupsen/logrus"
)

// Bolt 用户处理逻辑
type Bolt interface {
	Prepare(conf map[string]any, context any, out *Collector) error
	Execute(t *message.StormTuple) error
}

// Cleaner 可选接口，Run 返回前调用，握手失败时同样会调用
type Cleaner interface {
	Cleanup()
}

// Options 运行选项
type Options struct {
	AutoAck      bool // Execute 成功后自动 ack
	AutoFail     bool // Execute 失败后自动 fail
	ReportErrors bool // Execute 失败时向对端发送 error 命令
}

// Runner bolt 主循环
type Runner struct {
	c    *component.Component
	bolt Bolt
	opts Options
	out  *Collector
}

func NewRunner(c *component.Component, b Bolt, opts Options) *Runner {
	return &Runner{
		c:    c,
		bolt: b,
		opts: opts,
		out:  &Collector{c: c},
	}
}

// Run 阻塞运行直到对端关闭通道（返回 nil）或出现协议错误
func (r *Runner) Run() error {
	if cleaner, ok := r.bolt.(Cleaner); ok {
		defer cleaner.Cleanup()
	}

	hs, err := r.c.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize bolt: %w", err)
	}
	if err := r.bolt.Prepare(hs.Conf, hs.Context, r.out); err != nil {
		return fmt.Errorf("failed to prepare bolt: %w", err)
	}
	componentID, _ := hs.ComponentID()
	taskID, _ := hs.TaskID()
	logrus.WithFields(logrus.Fields{
		"componentId": componentID,
		"taskId":      taskID,
	}).Info("Bolt prepared")

	for {
		if err := r.step(); err != nil {
			if errors.Is(err, message.ErrChannelClosed) {
				logrus.Info("Channel closed by orchestrator, bolt exiting")
				return nil
			}
			return err
		}
	}
}

func (r *Runner) step() error {
	t, err := r.c.ReadTuple()
	if err != nil {
		return err
	}
	if t.IsHeartbeat() {
		return r.c.Sync()
	}
	return r.process(t)
}

// process 只返回协议层错误，Execute 的错误通过 fail/error 命令上报。
// Execute 内部 emit 遇到的协议层错误直接结束运行
func (r *Runner) process(t *message.StormTuple) error {
	execErr := r.bolt.Execute(t)
	if message.IsFatal(execErr) {
		return execErr
	}
	if execErr == nil {
		if r.opts.AutoAck {
			return r.out.Ack(t)
		}
		return nil
	}

	logrus.WithError(execErr).WithField("tuple", t.ID).Warn("Failed to execute tuple")
	if r.opts.ReportErrors {
		if err := r.c.ReportError(execErr.Error()); err != nil {
			return err
		}
	}
	if r.opts.AutoFail {
		return r.out.Fail(t)
	}
	return nil
}
