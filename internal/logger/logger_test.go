package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := GetDefault()
	SetDefaultLogger(New(&Config{Level: "debug", Format: "json", Output: buf, ServiceName: "test"}))
	t.Cleanup(func() { SetDefaultLogger(prev) })
	return buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestEntry_MergesContextAndMetricFields(t *testing.T) {
	buf := captureLogger(t)

	ctx := StartRequest(context.Background(), "req-1")
	ctx = StartSearch(ctx, "search-1")

	With(Fields{FieldProvider: "staging:demo"}).
		WithStrategy("phrase", "ocean waves").
		WithCount(3).
		WithDuration(12).
		Info(ctx, "strategy done: added=%d", 3)

	line := lastLine(t, buf)
	assert.Equal(t, "strategy done: added=3", line["message"])
	assert.Equal(t, "req-1", line[FieldRequestID])
	assert.Equal(t, "search-1", line[FieldSearchID])
	assert.Equal(t, "media_search", line[FieldComponent])
	assert.Equal(t, "phrase", line[FieldStrategy])
	assert.Equal(t, "ocean waves", line[FieldQuery])
	assert.Equal(t, float64(3), line[FieldCount])
	assert.Equal(t, float64(12), line[FieldDurationMs])
	assert.Equal(t, "test", line["service"])
}

func TestEntry_WithDoesNotMutate(t *testing.T) {
	base := Component("learner")
	_ = base.WithCount(1)
	assert.NotContains(t, base.fields, FieldCount)
}

func TestComponent_BareContextUsesDefault(t *testing.T) {
	buf := captureLogger(t)

	Component("backup").Warn(context.Background(), "snapshot skipped")

	line := lastLine(t, buf)
	assert.Equal(t, "backup", line[FieldComponent])
	assert.Equal(t, "warning", line["level"])
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	assert.Equal(t, "abc", RequestID(StartRequest(context.Background(), "abc")))
}
