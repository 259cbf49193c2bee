package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/9triver/multilang/internal/multilang/message"
	"github.com/9triver/multilang/internal/multilang/transport"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTransport 按顺序返回预置的帧，并记录发送的消息
type testTransport struct {
	frames []message.Frame
	reads  int
	sent   []any
}

func newTestTransport(values ...any) *testTransport {
	t := &testTransport{}
	for _, v := range values {
		f, err := message.Classify(v)
		if err != nil {
			panic(err)
		}
		t.frames = append(t.frames, f)
	}
	return t
}

func (t *testTransport) ReceiveFrame() (message.Frame, error) {
	if t.reads >= len(t.frames) {
		return message.Frame{}, message.ErrChannelClosed
	}
	f := t.frames[t.reads]
	t.reads++
	return f, nil
}

func (t *testTransport) SendFrame(v any) error {
	t.sent = append(t.sent, v)
	return nil
}

var (
	commandMsg = map[string]any{"this_is_a_command": true}
	taskIDMsg  = []any{"this", "is", "a", "taskid", "list"}
)

func TestReadCommandQueuesTaskIDs(t *testing.T) {
	tr := newTestTransport(taskIDMsg, taskIDMsg, taskIDMsg, commandMsg)
	c := New(tr)

	cmd, err := c.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, message.Command(commandMsg), cmd)
	assert.Equal(t, 3, c.PendingTaskIDs())
	assert.Equal(t, 0, c.PendingCommands())
	assert.Equal(t, 3.0, testutil.ToFloat64(c.Metrics().PendingTaskIDs))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.Metrics().FramesReceived))
}

func TestReadCommandQueued(t *testing.T) {
	tr := newTestTransport()
	c := New(tr)

	next := message.Command{"next_command": 3}
	another := message.Command{"another_command": 7}
	c.pendingCommands.Enqueue(next)
	c.pendingCommands.Enqueue(another)
	c.pendingCommands.Enqueue(another)

	cmd, err := c.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, next, cmd)
	assert.Equal(t, 2, c.PendingCommands())
	assert.Zero(t, tr.reads, "queued command must be served without touching the transport")
}

func TestReadTaskIDsQueuesCommands(t *testing.T) {
	tr := newTestTransport(commandMsg, commandMsg, commandMsg, taskIDMsg)
	c := New(tr)

	ids, err := c.ReadTaskIDs()
	require.NoError(t, err)
	assert.Equal(t, message.TaskIDs(taskIDMsg), ids)
	assert.Equal(t, 3, c.PendingCommands())
	assert.Equal(t, 0, c.PendingTaskIDs())
}

func TestReadTaskIDsQueued(t *testing.T) {
	tr := newTestTransport()
	c := New(tr)

	next := message.TaskIDs{3}
	another := message.TaskIDs{7}
	c.pendingTaskIDs.Enqueue(next)
	c.pendingTaskIDs.Enqueue(another)
	c.pendingTaskIDs.Enqueue(another)

	ids, err := c.ReadTaskIDs()
	require.NoError(t, err)
	assert.Equal(t, next, ids)
	assert.Equal(t, 2, c.PendingTaskIDs())
	assert.Zero(t, tr.reads)
}

func TestInterleavedFramesKeepPerCategoryOrder(t *testing.T) {
	tr := newTestTransport(
		map[string]any{"n": 1},
		[]any{"a"},
		[]any{"b"},
		map[string]any{"n": 2},
		[]any{"c"},
		map[string]any{"n": 3},
		map[string]any{"n": 4},
		[]any{"d"},
	)
	c := New(tr)

	ids, err := c.ReadTaskIDs()
	require.NoError(t, err)
	assert.Equal(t, message.TaskIDs{"a"}, ids)

	ids, err = c.ReadTaskIDs()
	require.NoError(t, err)
	assert.Equal(t, message.TaskIDs{"b"}, ids)

	var got []any
	for i := 0; i < 4; i++ {
		cmd, err := c.ReadCommand()
		require.NoError(t, err)
		got = append(got, cmd["n"])
	}
	assert.Equal(t, []any{1, 2, 3, 4}, got)
	assert.Equal(t, 1, c.PendingTaskIDs())

	var rest []any
	for i := 0; i < 2; i++ {
		ids, err := c.ReadTaskIDs()
		require.NoError(t, err)
		rest = append(rest, ids[0])
	}
	assert.Equal(t, []any{"c", "d"}, rest)
	assert.Equal(t, len(tr.frames), tr.reads)
}

func TestBufferedItemsDrainBeforeTransport(t *testing.T) {
	tr := newTestTransport(
		map[string]any{"n": 1},
		map[string]any{"n": 2},
		[]any{"x"},
		map[string]any{"n": 3},
	)
	c := New(tr)

	_, err := c.ReadTaskIDs()
	require.NoError(t, err)
	readsAfterTaskIDs := tr.reads

	for want := 1; want <= 2; want++ {
		cmd, err := c.ReadCommand()
		require.NoError(t, err)
		assert.Equal(t, want, cmd["n"])
		assert.Equal(t, readsAfterTaskIDs, tr.reads)
	}

	cmd, err := c.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, 3, cmd["n"])
	assert.Equal(t, readsAfterTaskIDs+1, tr.reads)
}

func TestReadSurfacesChannelClosed(t *testing.T) {
	c := New(newTestTransport(taskIDMsg))
	_, err := c.ReadCommand()
	assert.ErrorIs(t, err, message.ErrChannelClosed)
	assert.Equal(t, 1, c.PendingTaskIDs(), "frames read before closure stay buffered")

	_, err = New(newTestTransport(commandMsg)).ReadTaskIDs()
	assert.ErrorIs(t, err, message.ErrChannelClosed)
}

func TestReadTuple(t *testing.T) {
	c := New(newTestTransport(map[string]any{
		"id":     "id",
		"comp":   "comp",
		"stream": "stream",
		"task":   "task",
		"tuple":  "tuple",
	}))

	tup, err := c.ReadTuple()
	require.NoError(t, err)
	assert.Equal(t, &message.StormTuple{
		ID:        "id",
		Component: "comp",
		Stream:    "stream",
		Task:      "task",
		Values:    "tuple",
	}, tup)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Metrics().Tuples))
}

func TestReadTupleMissingKey(t *testing.T) {
	c := New(newTestTransport(map[string]any{"id": "id", "comp": "comp"}))
	_, err := c.ReadTuple()
	assert.ErrorIs(t, err, message.ErrProtocol)
}

func TestSendCommandWithOpts(t *testing.T) {
	tr := newTestTransport()
	require.NoError(t, New(tr).SendCommand("test", map[string]any{"option": "foo"}))
	require.Len(t, tr.sent, 1)
	assert.Equal(t, map[string]any{"command": "test", "option": "foo"}, tr.sent[0])
}

func TestSendCommandWithNoOpts(t *testing.T) {
	tr := newTestTransport()
	require.NoError(t, New(tr).SendCommand("test", nil))
	require.Len(t, tr.sent, 1)
	assert.Equal(t, map[string]any{"command": "test"}, tr.sent[0])
}

func TestSendCommandClobberCommand(t *testing.T) {
	tr := newTestTransport()
	opts := map[string]any{"command": "joe"}
	require.NoError(t, New(tr).SendCommand("test", opts))
	require.Len(t, tr.sent, 1)
	assert.Equal(t, map[string]any{"command": "test"}, tr.sent[0])
	assert.Equal(t, map[string]any{"command": "joe"}, opts, "caller's options must not be mutated")
}

func TestConvenienceCommands(t *testing.T) {
	tr := newTestTransport()
	c := New(tr)
	require.NoError(t, c.Sync())
	require.NoError(t, c.Log("hello", LogWarn))
	require.NoError(t, c.ReportError("boom"))

	assert.Equal(t, []any{
		map[string]any{"command": "sync"},
		map[string]any{"command": "log", "msg": "hello", "level": 3},
		map[string]any{"command": "error", "msg": "boom"},
	}, tr.sent)
	assert.Equal(t, 3.0, testutil.ToFloat64(c.Metrics().FramesSent))
}

func TestInitialize(t *testing.T) {
	tr := newTestTransport(map[string]any{
		"conf":    map[string]any{"foo": "bar"},
		"context": "context",
		"pidDir":  "pidDir",
	})

	type pidCall struct {
		dir string
		pid int
	}
	var calls []pidCall
	c := New(tr,
		WithPID(func() int { return 1234 }),
		WithPidFile(func(dir string, pid int) error {
			calls = append(calls, pidCall{dir, pid})
			return nil
		}),
	)

	hs, err := c.Initialize()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"foo": "bar"}, hs.Conf)
	assert.Equal(t, "context", hs.Context)

	assert.Equal(t, []any{map[string]any{"pid": 1234}}, tr.sent)
	assert.Equal(t, []pidCall{{"pidDir", 1234}}, calls)

	_, err = c.Initialize()
	assert.ErrorIs(t, err, message.ErrProtocol)
}

func TestInitializeMissingKey(t *testing.T) {
	tr := newTestTransport(map[string]any{"conf": map[string]any{}, "pidDir": "/tmp"})
	created := false
	c := New(tr, WithPidFile(func(string, int) error { created = true; return nil }))

	_, err := c.Initialize()
	assert.ErrorIs(t, err, message.ErrProtocol)
	assert.Empty(t, tr.sent)
	assert.False(t, created)
}

func TestInitializePidFileError(t *testing.T) {
	tr := newTestTransport(map[string]any{"conf": map[string]any{}, "context": nil, "pidDir": "/tmp"})
	c := New(tr, WithPidFile(func(string, int) error { return errors.New("read-only fs") }))

	_, err := c.Initialize()
	assert.EqualError(t, err, "read-only fs")
}

func TestCreatePidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1234")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0644))

	require.NoError(t, CreatePidFile(dir, 1234))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(content), "existing content must not be truncated")

	require.NoError(t, CreatePidFile(dir, 42))
	assert.FileExists(t, filepath.Join(dir, "42"))

	assert.Error(t, CreatePidFile(filepath.Join(dir, "missing"), 1))
}

func TestHandshakeOverLineTransport(t *testing.T) {
	dir := t.TempDir()
	hello, err := json.Marshal(map[string]any{
		"conf":    map[string]any{"foo": "bar"},
		"context": "ctx",
		"pidDir":  dir,
	})
	require.NoError(t, err)

	var out bytes.Buffer
	in := strings.NewReader(string(hello) + "\nend\n")
	c := New(transport.New(in, &out), WithPID(func() int { return 1234 }))

	hs, err := c.Initialize()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"foo": "bar"}, hs.Conf)
	assert.Equal(t, "ctx", hs.Context)
	assert.Equal(t, "{\"pid\":1234}\nend\n", out.String())
	assert.FileExists(t, filepath.Join(dir, "1234"))

	_, err = c.ReadCommand()
	assert.ErrorIs(t, err, message.ErrChannelClosed)
}
