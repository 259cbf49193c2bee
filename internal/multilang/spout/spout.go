// Package spout 驱动用户实现的 spout。对端每发送一条命令（next/ack/fail/activate/deactivate），
// spout 处理完毕后都必须回复一次 sync。
package spout

import (
	"errors"
	"fmt"

	"github.com/9triver/multilang/internal/multilang/component"
	"github.com/9triver/multilang/internal/multilang/message"
	"github.com/sirupsen/logrus"
)

// Spout 用户数据源
type Spout interface {
	Open(conf map[string]any, context any, out *Collector) error
	NextTuple() error
}

// Acker 可选接口，元组树被完整处理
type Acker interface {
	Ack(id any) error
}

// Failer 可选接口，元组处理失败或超时
type Failer interface {
	Fail(id any) error
}

// Activator 可选接口
type Activator interface {
	Activate() error
}

// Deactivator 可选接口
type Deactivator interface {
	Deactivate() error
}

// Options 运行选项
type Options struct {
	AutoID       bool // Emit 未指定 MessageID 时自动生成
	ReportErrors bool // 回调失败时向对端发送 error 命令
}

// Runner spout 主循环
type Runner struct {
	c     *component.Component
	spout Spout
	opts  Options
	out   *Collector
}

func NewRunner(c *component.Component, s Spout, opts Options) *Runner {
	return &Runner{
		c:     c,
		spout: s,
		opts:  opts,
		out:   &Collector{c: c, autoID: opts.AutoID},
	}
}

// Run 阻塞运行直到对端关闭通道（返回 nil）或出现协议错误
func (r *Runner) Run() error {
	hs, err := r.c.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize spout: %w", err)
	}
	if err := r.spout.Open(hs.Conf, hs.Context, r.out); err != nil {
		return fmt.Errorf("failed to open spout: %w", err)
	}
	componentID, _ := hs.ComponentID()
	taskID, _ := hs.TaskID()
	logrus.WithFields(logrus.Fields{
		"componentId": componentID,
		"taskId":      taskID,
	}).Info("Spout opened")

	for {
		if err := r.step(); err != nil {
			if errors.Is(err, message.ErrChannelClosed) {
				logrus.Info("Channel closed by orchestrator, spout exiting")
				return nil
			}
			return err
		}
	}
}

func (r *Runner) step() error {
	cmd, err := r.c.ReadCommand()
	if err != nil {
		return err
	}
	if err := r.dispatch(cmd); err != nil {
		return err
	}
	return r.c.Sync()
}

// dispatch 只返回协议层错误，回调错误记录日志后按配置上报
func (r *Runner) dispatch(cmd message.Command) error {
	var cbErr error
	switch name := cmd.Name(); name {
	case "next":
		cbErr = r.spout.NextTuple()
	case "ack":
		if err := cmd.Require("ack", "id"); err != nil {
			return err
		}
		if acker, ok := r.spout.(Acker); ok {
			cbErr = acker.Ack(cmd["id"])
		}
	case "fail":
		if err := cmd.Require("fail", "id"); err != nil {
			return err
		}
		if failer, ok := r.spout.(Failer); ok {
			cbErr = failer.Fail(cmd["id"])
		}
	case "activate":
		if a, ok := r.spout.(Activator); ok {
			cbErr = a.Activate()
		}
	case "deactivate":
		if d, ok := r.spout.(Deactivator); ok {
			cbErr = d.Deactivate()
		}
	default:
		logrus.Warnf("Ignoring unknown spout command %q", name)
		return nil
	}

	if cbErr == nil {
		return nil
	}
	// 回调内部 emit 遇到协议层错误时直接结束
	if message.IsFatal(cbErr) {
		return cbErr
	}
	logrus.WithError(cbErr).WithField("command", cmd.Name()).Warn("Spout callback failed")
	if r.opts.ReportErrors {
		return r.c.ReportError(cbErr.Error())
	}
	return nil
}
