package message

import (
	"errors"
	"fmt"
)

// 协议错误分类，均可通过 errors.Is 判断
var (
	// ErrChannelClosed 对端关闭通道（读到 EOF），属于正常结束
	ErrChannelClosed = errors.New("multilang: channel closed")
	// ErrDecode 累积的行不是合法的 JSON
	ErrDecode = errors.New("multilang: failed to decode frame")
	// ErrMalformedFrame 解码结果既不是对象也不是数组
	ErrMalformedFrame = errors.New("multilang: malformed frame")
	// ErrProtocol 命令缺少必要字段或字段类型不符
	ErrProtocol = errors.New("multilang: protocol error")
	// ErrTransport 底层读写失败，帧流状态未知
	ErrTransport = errors.New("multilang: transport error")
)

// IsFatal 判断错误是否来自协议层。协议层错误发生后帧流无法继续使用，
// 只能结束运行；其余错误属于用户逻辑
func IsFatal(err error) bool {
	return errors.Is(err, ErrChannelClosed) ||
		errors.Is(err, ErrDecode) ||
		errors.Is(err, ErrMalformedFrame) ||
		errors.Is(err, ErrProtocol) ||
		errors.Is(err, ErrTransport)
}

func missingKey(op, key string) error {
	return fmt.Errorf("%w: %s: missing key %q", ErrProtocol, op, key)
}
