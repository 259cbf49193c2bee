package util

import (
	"github.com/lithammer/shortuuid/v4"
)

// MessageIDPrefix spout 自动生成的 message id 前缀，便于在 ack/fail 日志中区分来源
const MessageIDPrefix = "msg-"

// NewMessageID 生成 spout 的 message id
func NewMessageID() string {
	return MessageIDPrefix + shortuuid.New()
}

// NewRunID 标识一次 worker 进程运行，写入日志字段
func NewRunID() string {
	return shortuuid.New()
}
