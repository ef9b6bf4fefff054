package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = WithTraceID(ctx, "abc-123")
	assert.Equal(t, "abc-123", GetTraceID(ctx))
}

func TestNewLogger_InjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Level: "info", Format: "json", Output: &buf})

	ctx := WithTraceID(context.Background(), "trace-42")
	logger.InfoContext(ctx, "hello", "key", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "value", record["key"])
	assert.Equal(t, "trace-42", record["trace_id"])
}

func TestNewLogger_NoTraceIDWithoutContextValue(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Level: "info", Format: "json", Output: &buf})

	logger.InfoContext(context.Background(), "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "trace_id")
}

func TestNewLogger_TraceIDSurvivesWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Level: "info", Format: "json", Output: &buf})
	child := logger.With("component", "test")

	ctx := WithTraceID(context.Background(), "trace-7")
	child.InfoContext(ctx, "scoped")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "test", record["component"])
	assert.Equal(t, "trace-7", record["trace_id"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Level: "warn", Format: "json", Output: &buf})

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Level: "info", Format: "text", Output: &buf})

	logger.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "debug", want: "DEBUG"},
		{input: "INFO", want: "INFO"},
		{input: "warn", want: "WARN"},
		{input: "error", want: "ERROR"},
		{input: "unknown", want: "INFO"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.input).String(), "level %q", tt.input)
	}
}
