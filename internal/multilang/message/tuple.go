package message

import "fmt"

const (
	HeartbeatStream = "__heartbeat"
	SystemComponent = "__system"
	TickStream      = "__tick"
)

// StormTuple 由待处理命令解码得到的元组
type StormTuple struct {
	ID        any
	Component any
	Stream    any
	Task      any
	Values    any
}

// TupleFromCommand 按 id、comp、stream、task、tuple 字段构造元组
func TupleFromCommand(c Command) (*StormTuple, error) {
	if err := c.Require("tuple", "id", "comp", "stream", "task", "tuple"); err != nil {
		return nil, err
	}
	return &StormTuple{
		ID:        c["id"],
		Component: c["comp"],
		Stream:    c["stream"],
		Task:      c["task"],
		Values:    c["tuple"],
	}, nil
}

// IsHeartbeat 心跳元组需要回复 sync
func (t *StormTuple) IsHeartbeat() bool {
	return fmt.Sprint(t.Task) == "-1" && t.Stream == HeartbeatStream
}

// IsTick 系统定时元组
func (t *StormTuple) IsTick() bool {
	return t.Component == SystemComponent && t.Stream == TickStream
}

// ValueList 以数组形式返回 Values，Values 不是数组时返回 nil
func (t *StormTuple) ValueList() []any {
	values, _ := t.Values.([]any)
	return values
}

func (t *StormTuple) String() string {
	return fmt.Sprintf("StormTuple(id=%v, component=%v, stream=%v, task=%v, values=%v)",
		t.ID, t.Component, t.Stream, t.Task, t.Values)
}
