package message

import "fmt"

// Handshake 握手结果：拓扑配置、运行上下文以及 pid 文件目录
type Handshake struct {
	Conf    map[string]any
	Context any
	PidDir  string
}

// HandshakeFromCommand 从第一条命令中提取 conf、context、pidDir
func HandshakeFromCommand(c Command) (*Handshake, error) {
	if err := c.Require("handshake", "conf", "context", "pidDir"); err != nil {
		return nil, err
	}

	var conf map[string]any
	switch v := c["conf"].(type) {
	case nil:
		conf = map[string]any{}
	case map[string]any:
		conf = v
	default:
		return nil, fmt.Errorf("%w: handshake: conf must be an object, got %T", ErrProtocol, v)
	}

	pidDir, ok := c["pidDir"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: handshake: pidDir must be a string, got %T", ErrProtocol, c["pidDir"])
	}

	return &Handshake{
		Conf:    conf,
		Context: c["context"],
		PidDir:  pidDir,
	}, nil
}

// TaskID 返回 context.taskid，context 不是对象或缺少该字段时 ok 为 false
func (h *Handshake) TaskID() (int, bool) {
	ctx, ok := h.Context.(map[string]any)
	if !ok {
		return 0, false
	}
	id, err := toInt(ctx["taskid"])
	if err != nil {
		return 0, false
	}
	return id, true
}

// ComponentID 返回当前 task 对应的组件名
func (h *Handshake) ComponentID() (string, bool) {
	ctx, ok := h.Context.(map[string]any)
	if !ok {
		return "", false
	}
	if name, ok := ctx["componentid"].(string); ok {
		return name, true
	}
	taskID, ok := h.TaskID()
	if !ok {
		return "", false
	}
	mapping, ok := ctx["task->component"].(map[string]any)
	if !ok {
		return "", false
	}
	name, ok := mapping[fmt.Sprint(taskID)].(string)
	return name, ok
}
