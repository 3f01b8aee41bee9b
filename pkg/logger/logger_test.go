package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelNone, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn, "")

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN] warn 3")
	assert.Contains(t, out, "[ERROR] error 4")
}

func TestWithPrefixSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf, LevelInfo, "server")
	child := root.WithPrefix("conn_1")

	child.Infof("hello")
	assert.Contains(t, buf.String(), "[server:conn_1] hello")

	root.SetLevel(LevelError)
	buf.Reset()
	child.Infof("dropped")
	assert.Empty(t, buf.String())
}

func TestNoneDisablesOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelNone, "")
	l.Errorf("nothing")
	assert.Empty(t, buf.String())
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo, "http")
	sl := slog.New(NewSlogHandler(l)).WithGroup("req").With("path", "/metrics")

	sl.Debug("hidden")
	sl.Info("served", "status", 200)

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.Contains(t, out, "[INFO] [http] served req.path=/metrics req.status=200")
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	std := StdLogger(New(&buf, LevelInfo, ""))
	std.Print("http: accept error")
	assert.Contains(t, buf.String(), "[ERROR] http: accept error")
}
