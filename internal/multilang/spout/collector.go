package spout

import (
	"github.com/9triver/multilang/internal/multilang/component"
	"github.com/9triver/multilang/internal/multilang/message"
	"github.com/9triver/multilang/internal/util"
)

// EmitOptions emit 选项
type EmitOptions struct {
	Stream      string
	MessageID   any // 非空时对端会回调 ack/fail
	DirectTask  any
	SkipTaskIDs bool
}

// Collector spout 的输出端
type Collector struct {
	c      *component.Component
	autoID bool
}

// Emit 发送新元组，返回实际使用的 message id 与对端回复的 task id
func (o *Collector) Emit(values []any, opts EmitOptions) (any, message.TaskIDs, error) {
	if values == nil {
		values = []any{}
	}
	id := opts.MessageID
	if id == nil && o.autoID {
		id = util.NewMessageID()
	}

	needTaskIDs := opts.DirectTask == nil && !opts.SkipTaskIDs
	msg := map[string]any{"tuple": values}
	if id != nil {
		msg["id"] = id
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
		return nil, nil, err
	}
	if !needTaskIDs {
		return id, nil, nil
	}
	ids, err := o.c.ReadTaskIDs()
	if err != nil {
		return nil, nil, err
	}
	return id, ids, nil
}

func (o *Collector) Log(msg string) error {
	return o.c.Log(msg, component.LogInfo)
}

func (o *Collector) ReportError(msg string) error {
	return o.c.ReportError(msg)
}
