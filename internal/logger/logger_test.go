package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	s := bufio.NewScanner(buf)
	var out []map[string]any
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	require.NoError(t, s.Err())
	return out
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	UseWriter(&buf)
	require.NoError(t, SetLevel("info"))

	Debug("debug message should be filtered")
	Info("info message", "k", 1)

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	require.Equal(t, "info message", records[0]["msg"])

	buf.Reset()
	require.NoError(t, SetLevel("debug"))
	Debug("visible debug", "a", 2)
	records = decodeLines(t, &buf)
	require.Len(t, records, 1)
	require.Equal(t, "DEBUG", records[0]["level"])
}

func TestFieldExtraction(t *testing.T) {
	var buf bytes.Buffer
	UseWriter(&buf)
	require.NoError(t, SetLevel("debug"))

	l := WithMessage(WithFlow(WithSession(Logger(), "sess-1", "client"), "WRITING"), "CW_CLIENT_HELLO", 1, 12345)
	l.Info("hello world", "extra", 42)

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	rec := records[0]
	for _, k := range []string{"session_id", "role", "flow_state", "hand_state", "msg_type", "timestamp"} {
		require.Containsf(t, rec, k, "missing field %s in record: %+v", k, rec)
	}
	require.Equal(t, "sess-1", rec["session_id"])
	require.Equal(t, "WRITING", rec["flow_state"])
	require.Equal(t, "CW_CLIENT_HELLO", rec["hand_state"])
}

func TestSubStateTransitionAndSuspendLevels(t *testing.T) {
	var buf bytes.Buffer
	UseWriter(&buf)
	require.NoError(t, SetLevel("debug"))

	SubStateTransition(Logger(), "read", "HEADER", "BODY")
	Suspend(Logger(), "read.header")

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)
	require.Equal(t, "DEBUG", records[0]["level"])
	require.Equal(t, "BODY", records[0]["to"])
	require.Equal(t, "WARN", records[1]["level"])
	require.Equal(t, "read.header", records[1]["op"])

	buf.Reset()
	require.NoError(t, SetLevel("info"))
	SubStateTransition(Logger(), "write", "TRANSITION", "PRE_WORK")
	require.Empty(t, decodeLines(t, &buf))

	// A nil logger must not panic -- internal/statem's sub-machine unit
	// tests call stepRead/stepWrite with no Driver-supplied logger.
	SubStateTransition(nil, "read", "HEADER", "BODY")
	Suspend(nil, "read.header")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug": "DEBUG",
		"info":  "INFO",
		"warn":  "WARN",
		"error": "ERROR",
	}
	for in, expect := range cases {
		require.NoError(t, SetLevel(in))
		require.Contains(t, strings.ToUpper(Level()), expect)
	}
	require.Error(t, SetLevel("bogus"))
}
