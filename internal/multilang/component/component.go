// Package component 实现 worker 侧的协议状态：命令与 task id 的分流、
// 握手、元组解码以及出站命令的构造。
//
// Component 不是并发安全的，读取与握手必须在同一个 goroutine 中串行调用；
// 只有 SendCommand 及其封装（Log 等）可以从其他 goroutine 调用。
package component

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/9triver/multilang/internal/multilang/message"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/sirupsen/logrus"
)

// Transport 帧的来源与去向
type Transport interface {
	ReceiveFrame() (message.Frame, error)
	SendFrame(v any) error
}

// Option 构造 Component 时的可选项
type Option func(*Component)

// WithPidFile 替换 pid 文件的创建方式，测试中可以传入内存实现
func WithPidFile(fn PidFileFunc) Option {
	return func(c *Component) { c.pidFile = fn }
}

// WithPID 替换获取进程号的方式
func WithPID(fn func() int) Option {
	return func(c *Component) { c.getpid = fn }
}

// WithMetrics 使用外部创建的指标，通常已注册到状态接口的 registry
func WithMetrics(m *Metrics) Option {
	return func(c *Component) { c.metrics = m }
}

// WithQueueWatermark 待处理队列超过 n 时打印告警，0 表示不告警。
// 只影响日志，不会丢弃或阻塞。
func WithQueueWatermark(n int) Option {
	return func(c *Component) { c.watermark = n }
}

// Component 在同一个帧流上提供"下一条命令"和"下一个 task id 列表"两个读取操作，
// 读取过程中遇到的另一类帧按到达顺序缓存
type Component struct {
	transport Transport

	pendingCommands *linkedlistqueue.Queue // message.Command
	pendingTaskIDs  *linkedlistqueue.Queue // message.TaskIDs

	pidFile   PidFileFunc
	getpid    func() int
	watermark int

	// 日志 hook 可能在其他 goroutine 中读取
	initialized atomic.Bool

	metrics *Metrics
}

// New 创建 Component，两个待处理队列初始为空
func New(t Transport, opts ...Option) *Component {
	c := &Component{
		transport:       t,
		pendingCommands: linkedlistqueue.New(),
		pendingTaskIDs:  linkedlistqueue.New(),
		pidFile:         CreatePidFile,
		getpid:          os.Getpid,
		metrics:         NewMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Metrics 返回协议指标
func (c *Component) Metrics() *Metrics {
	return c.metrics
}

// Initialized 握手是否已完成，可在其他 goroutine 中调用
func (c *Component) Initialized() bool {
	return c.initialized.Load()
}

// PendingCommands 已缓存但未消费的命令数
func (c *Component) PendingCommands() int {
	return c.pendingCommands.Size()
}

// PendingTaskIDs 已缓存但未消费的 task id 列表数
func (c *Component) PendingTaskIDs() int {
	return c.pendingTaskIDs.Size()
}

// ReadCommand 返回下一条命令。优先返回已缓存的命令；否则从传输层持续读取，
// 途中遇到的 task id 列表放入待处理队列
func (c *Component) ReadCommand() (message.Command, error) {
	if v, ok := c.pendingCommands.Dequeue(); ok {
		c.metrics.PendingCommands.Set(float64(c.pendingCommands.Size()))
		return v.(message.Command), nil
	}

	for {
		f, err := c.receive()
		if err != nil {
			return nil, err
		}
		if f.IsCommand() {
			return f.Command(), nil
		}
		c.pendingTaskIDs.Enqueue(f.TaskIDs())
		c.metrics.PendingTaskIDs.Set(float64(c.pendingTaskIDs.Size()))
		c.checkWatermark("taskids", c.pendingTaskIDs.Size())
	}
}

// ReadTaskIDs 返回下一个 task id 列表，与 ReadCommand 对称
func (c *Component) ReadTaskIDs() (message.TaskIDs, error) {
	if v, ok := c.pendingTaskIDs.Dequeue(); ok {
		c.metrics.PendingTaskIDs.Set(float64(c.pendingTaskIDs.Size()))
		return v.(message.TaskIDs), nil
	}

	for {
		f, err := c.receive()
		if err != nil {
			return nil, err
		}
		if f.IsTaskIDs() {
			return f.TaskIDs(), nil
		}
		c.pendingCommands.Enqueue(f.Command())
		c.metrics.PendingCommands.Set(float64(c.pendingCommands.Size()))
		c.checkWatermark("commands", c.pendingCommands.Size())
	}
}

// ReadTuple 读取下一条命令并解码为元组
func (c *Component) ReadTuple() (*message.StormTuple, error) {
	cmd, err := c.ReadCommand()
	if err != nil {
		return nil, err
	}
	t, err := message.TupleFromCommand(cmd)
	if err != nil {
		return nil, err
	}
	c.metrics.Tuples.Inc()
	return t, nil
}

func (c *Component) receive() (message.Frame, error) {
	f, err := c.transport.ReceiveFrame()
	if err != nil {
		return message.Frame{}, err
	}
	c.metrics.FramesReceived.Inc()
	return f, nil
}

func (c *Component) send(v any) error {
	if err := c.transport.SendFrame(v); err != nil {
		return err
	}
	c.metrics.FramesSent.Inc()
	return nil
}

func (c *Component) checkWatermark(queue string, size int) {
	if c.watermark > 0 && size > c.watermark && (size-1)%c.watermark == 0 {
		logrus.WithField("queue", queue).Warnf("Pending %s queue has grown to %d frames", queue, size)
	}
}

func (c *Component) String() string {
	return fmt.Sprintf("Component(pendingCommands=%d, pendingTaskIDs=%d)",
		c.pendingCommands.Size(), c.pendingTaskIDs.Size())
}
