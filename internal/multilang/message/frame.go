package message

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind 帧类别
type Kind uint8

const (
	KindCommand Kind = iota + 1
	KindTaskIDs
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindTaskIDs:
		return "taskids"
	default:
		return "unknown"
	}
}

// Command 以键值对形式出现的帧：握手、待处理元组或控制指令
type Command map[string]any

// Name 返回 command 字段，不存在或不是字符串时返回空串
func (c Command) Name() string {
	name, _ := c["command"].(string)
	return name
}

// Require 检查命令是否包含全部指定字段
func (c Command) Require(op string, keys ...string) error {
	for _, key := range keys {
		if _, ok := c[key]; !ok {
			return missingKey(op, key)
		}
	}
	return nil
}

// TaskIDs 以数组形式出现的帧，一般是上一次 emit 被路由到的下游 task 列表
type TaskIDs []any

// Ints 将 task id 转换为整数
func (ids TaskIDs) Ints() ([]int, error) {
	out := make([]int, 0, len(ids))
	for i, v := range ids {
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("%w: task id at %d: %v", ErrProtocol, i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 0)
		return int(i), err
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// Frame 分类后的协议帧，只可能是 Command 或 TaskIDs 之一
type Frame struct {
	kind    Kind
	command Command
	taskIDs TaskIDs
}

func NewCommandFrame(c Command) Frame {
	if c == nil {
		c = Command{}
	}
	return Frame{kind: KindCommand, command: c}
}

func NewTaskIDsFrame(ids TaskIDs) Frame {
	if ids == nil {
		ids = TaskIDs{}
	}
	return Frame{kind: KindTaskIDs, taskIDs: ids}
}

func (f Frame) Kind() Kind       { return f.kind }
func (f Frame) IsCommand() bool  { return f.kind == KindCommand }
func (f Frame) IsTaskIDs() bool  { return f.kind == KindTaskIDs }
func (f Frame) Command() Command { return f.command }
func (f Frame) TaskIDs() TaskIDs { return f.taskIDs }

// Value 返回帧对应的原始 JSON 值，用于重新编码
func (f Frame) Value() any {
	if f.kind == KindTaskIDs {
		return []any(f.taskIDs)
	}
	return map[string]any(f.command)
}

// Classify 对解码后的 JSON 值分类；对象为命令，数组为 task id 列表，
// 其余（标量、null）视为协议违例
func Classify(v any) (Frame, error) {
	switch val := v.(type) {
	case map[string]any:
		return NewCommandFrame(val), nil
	case Command:
		return NewCommandFrame(val), nil
	case []any:
		return NewTaskIDsFrame(val), nil
	case TaskIDs:
		return NewTaskIDsFrame(val), nil
	default:
		return Frame{}, fmt.Errorf("%w: got %T", ErrMalformedFrame, v)
	}
}
