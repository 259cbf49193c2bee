// Package transport 实现多语言协议的行帧传输。
//
// 每个方向都是一串帧，一帧由若干行组成的 JSON 值加上一行 "end" 构成：
//
//	{"command": "emit", "tuple": [1, 2]}
//	end
package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/9triver/multilang/internal/multilang/message"
)

// Sentinel 帧结束标记行
const Sentinel = "end"

var sentinelLine = []byte("\n" + Sentinel + "\n")

// LineTransport 基于任意字节流的行帧传输，生产环境下为 stdin/stdout
type LineTransport struct {
	r *bufio.Reader

	mu sync.Mutex
	w  *bufio.Writer
}

// New 创建行帧传输
func New(r io.Reader, w io.Writer) *LineTransport {
	return &LineTransport{
		r: bufio.NewReader(r),
		w: bufio.NewWriter(w),
	}
}

// NewStdio 基于进程标准输入输出创建传输
func NewStdio() *LineTransport {
	return New(os.Stdin, os.Stdout)
}

// ReceiveFrame 读取行直到遇到 end，将累积的行作为一个 JSON 值解码并分类
func (t *LineTransport) ReceiveFrame() (message.Frame, error) {
	var lines []string
	for {
		line, err := t.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return message.Frame{}, fmt.Errorf("%w: failed to read frame: %w", message.ErrTransport, err)
		}
		if line == "" && err != nil {
			return message.Frame{}, message.ErrChannelClosed
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == Sentinel {
			break
		}
		lines = append(lines, line)
	}

	return decode(strings.Join(lines, "\n"))
}

func decode(payload string) (message.Frame, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return message.Frame{}, fmt.Errorf("%w: %v", message.ErrDecode, err)
	}
	// 一帧只允许一个 JSON 值
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return message.Frame{}, fmt.Errorf("%w: trailing data after value", message.ErrDecode)
	}
	return message.Classify(v)
}

// SendFrame 将 v 编码为一行 JSON，追加 end 行后立即 flush
func (t *LineTransport) SendFrame(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	// Encode 自带换行，替换为 "\nend\n"
	data := append(bytes.TrimRight(buf.Bytes(), "\n"), sentinelLine...)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.w.Write(data); err != nil {
		return fmt.Errorf("%w: failed to write frame: %w", message.ErrTransport, err)
	}
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("%w: failed to flush frame: %w", message.ErrTransport, err)
	}
	return nil
}
