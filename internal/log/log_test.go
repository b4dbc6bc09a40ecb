package log

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{in: "", want: LevelDebug},
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: " warning ", want: LevelWarn},
		{in: "error", want: LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	require.EqualError(t, err, `unknown log level "loud"`)
}

func TestLog_FormatsEntry(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWithWriter(&buf)
	defer cleanup()

	Warn(CatDispatch, "call not dispatched", "operation", "fact", "depth", 2)
	ErrorErr(CatGuard, "failed", nil)
	Info(CatCatalog, "odd", "dangling")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], " [WARN] [dispatch] call not dispatched operation=fact depth=2")
	require.Contains(t, lines[1], " [ERROR] [guard] failed error=<nil>")
	require.Contains(t, lines[2], " [INFO] [catalog] odd dangling=<missing>")
}

func TestLog_MinLevelAndEnabled(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWithWriter(&buf)
	defer cleanup()

	SetMinLevel(LevelWarn)
	Debug(CatCache, "hidden")
	Info(CatCache, "hidden")
	Warn(CatCache, "shown")
	require.Equal(t, 1, strings.Count(buf.String(), "\n"))

	SetEnabled(false)
	Error(CatCache, "hidden")
	require.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestLog_NoLoggerIsSilent(t *testing.T) {
	cleanup := InitWithWriter(&bytes.Buffer{})
	cleanup()

	require.NotPanics(t, func() { Debug(CatREPL, "nobody listening") })
	require.Nil(t, Subscribe(context.Background()))
}

func TestSubscribe_ReceivesEntries(t *testing.T) {
	cleanup := InitWithWriter(&bytes.Buffer{})
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	entries := Subscribe(ctx)
	require.NotNil(t, entries)

	Info(CatREPL, "repl started")

	select {
	case ev := <-entries:
		require.Contains(t, ev.Payload, "[INFO] [repl] repl started")
	case <-time.After(time.Second):
		t.Fatal("expected log entry")
	}
}
