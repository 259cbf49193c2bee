package bolt

import (
	"github.com/9triver/multilang/internal/multilang/component"
	"github.com/9triver/multilang/internal/multilang/message"
)

// EmitOptions emit 选项
type EmitOptions struct {
	Stream      string                // 为空时使用默认流
	Anchors     []*message.StormTuple // 锚定的输入元组
	DirectTask  any                   // 直接发往指定 task，对端不会回复 task id
	SkipTaskIDs bool                  // 不需要对端回复 task id
}

// Collector bolt 的输出端
type Collector struct {
	c *component.Component
}

// Emit 发送新元组，需要时等待对端回复的 task id 列表
func (o *Collector) Emit(values []any, opts EmitOptions) (message.TaskIDs, error) {
	anchors := make([]any, 0, len(opts.Anchors))
	for _, a := range opts.Anchors {
		anchors = append(anchors, a.ID)
	}
	if values == nil {
		values = []any{}
	}

	needTaskIDs := opts.DirectTask == nil && !opts.SkipTaskIDs
	msg := map[string]any{
		"anchors": anchors,
		"tuple":   values,
	}
	if opts.Stream != "" {
		msg["stream"] = opts.Stream
	}
	if opts.DirectTask != nil {
		msg["task"] = opts.DirectTask
	}
	if !needTaskIDs {
		msg["need_task_ids"] = false
	}

	if err := o.c.SendCommand("emit", msg); err != nil {
		return nil, err
	}
	if !needTaskIDs {
		return nil, nil
	}
	return o.c.ReadTaskIDs()
}

// Ack 确认元组处理成功
func (o *Collector) Ack(t *message.StormTuple) error {
	return o.c.SendCommand("ack", map[string]any{"id": t.ID})
}

// Fail 标记元组处理失败，由上游决定是否重放
func (o *Collector) Fail(t *message.StormTuple) error {
	return o.c.SendCommand("fail", map[string]any{"id": t.ID})
}

func (o *Collector) Log(msg string) error {
	return o.c.Log(msg, component.LogInfo)
}

func (o *Collector) ReportError(msg string) error {
	return o.c.ReportError(msg)
}
