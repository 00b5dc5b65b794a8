package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) Logger {
	return NewWithConfig(Config{
		Name:   "test",
		Format: FormatJSON,
		Level:  slog.LevelDebug,
		Writer: buf,
	})
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "test", entry["package"])
}

func TestErrReturnsOriginalError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	original := errors.New("boom")
	returned := log.Err("operation failed", original)

	assert.Same(t, original, returned)
	assert.Contains(t, buf.String(), "operation failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestErrMsgCreatesError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	err := log.ErrMsg("something went wrong")
	require.Error(t, err)
	assert.Equal(t, "something went wrong", err.Error())
}

func TestChainedAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf).Function("DoThing").File("thing")

	log.Info("ran")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DoThing", entry["function"])
	assert.Equal(t, "thing", entry["file"])
}

func TestTraceIDFromContext(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", TraceIDFromContext(ctx))
	assert.Equal(t, "", TraceIDFromContext(context.Background()))

	var buf bytes.Buffer
	log := newBufferLogger(&buf).TraceFromContext(ctx)
	log.Info("traced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc-123", entry["traceID"])
}
