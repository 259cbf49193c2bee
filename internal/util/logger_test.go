package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingFileCreation(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	rf, err := OpenRotatingFile(logDir, "worker", 3)
	require.NoError(t, err)
	defer rf.Close()

	expected := "worker-" + time.Now().Format(dateLayout) + ".log"
	assert.Equal(t, expected, filepath.Base(rf.Path()))
	assert.FileExists(t, rf.Path())

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.AddHook(rf.Hook())
	logger.Info("Test log message 1")

	content, err := os.ReadFile(rf.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "Test log message 1")
}

func TestRotatingFileRotate(t *testing.T) {
	logDir := t.TempDir()

	rf, err := OpenRotatingFile(logDir, "worker", 3)
	require.NoError(t, err)
	defer rf.Close()

	initial := rf.Path()
	tomorrow := time.Now().AddDate(0, 0, 1)
	require.NoError(t, rf.rotate(tomorrow))

	rotated := rf.Path()
	assert.NotEqual(t, initial, rotated)
	assert.Equal(t, "worker-"+tomorrow.Format(dateLayout)+".log", filepath.Base(rotated))
	assert.FileExists(t, initial, "old log file must be kept on rotation")

	// 同一天重复轮换不切换文件
	require.NoError(t, rf.rotate(tomorrow))
	assert.Equal(t, rotated, rf.Path())

	require.NoError(t, rf.Hook().Fire(&logrus.Entry{
		Message: "after rotation",
		Level:   logrus.InfoLevel,
		Time:    time.Now(),
	}))
	content, err := os.ReadFile(rotated)
	require.NoError(t, err)
	assert.Contains(t, string(content), "after rotation")
}

func TestRotatingFileCleanup(t *testing.T) {
	logDir := t.TempDir()
	now := time.Now()

	write := func(name string) string {
		path := filepath.Join(logDir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0666))
		return path
	}
	day := func(offset int) string {
		return "worker-" + now.AddDate(0, 0, -offset).Format(dateLayout) + ".log"
	}

	today := write(day(0))
	yesterday := write(day(1))
	threeDaysAgo := write(day(3))
	fourDaysAgo := write(day(4))
	fiveDaysAgo := write(day(5))
	other := write("other.log")
	otherPrefix := write("iarnet-" + now.AddDate(0, 0, -10).Format(dateLayout) + ".log")

	rf := &RotatingFile{dir: logDir, prefix: "worker", keepDays: 3, hook: &FileHook{}}
	require.NoError(t, rf.cleanup(now))

	assert.FileExists(t, today)
	assert.FileExists(t, yesterday)
	assert.FileExists(t, threeDaysAgo)
	assert.NoFileExists(t, fourDaysAgo)
	assert.NoFileExists(t, fiveDaysAgo)
	assert.FileExists(t, other)
	assert.FileExists(t, otherPrefix)
}

func TestFileHookUpdateFile(t *testing.T) {
	logDir := t.TempDir()

	file1, err := os.Create(filepath.Join(logDir, "a.log"))
	require.NoError(t, err)
	hook := &FileHook{file: file1}

	require.NoError(t, hook.Fire(&logrus.Entry{Message: "test message 1", Level: logrus.InfoLevel, Time: time.Now()}))

	file2, err := os.Create(filepath.Join(logDir, "b.log"))
	require.NoError(t, err)
	hook.UpdateFile(file2)

	require.NoError(t, hook.Fire(&logrus.Entry{Message: "test message 2", Level: logrus.InfoLevel, Time: time.Now()}))
	require.NoError(t, hook.Close())
	require.NoError(t, hook.Fire(&logrus.Entry{Message: "dropped", Level: logrus.InfoLevel, Time: time.Now()}))

	content1, err := os.ReadFile(filepath.Join(logDir, "a.log"))
	require.NoError(t, err)
	content2, err := os.ReadFile(filepath.Join(logDir, "b.log"))
	require.NoError(t, err)

	assert.Contains(t, string(content1), "test message 1")
	assert.NotContains(t, string(content1), "test message 2")
	assert.Contains(t, string(content2), "test message 2")
	assert.NotContains(t, string(content2), "dropped")
}

func TestInitLoggerKeepsStdoutClean(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	defer logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetReportCaller(false)

	InitLogger("debug")
	assert.Equal(t, os.Stderr, logrus.StandardLogger().Out)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	InitLogger("not-a-level")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestNewMessageID(t *testing.T) {
	a, b := NewMessageID(), NewMessageID()
	assert.True(t, strings.HasPrefix(a, MessageIDPrefix))
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, NewRunID())
}
