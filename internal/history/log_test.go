package history

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureDebug(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogPayloadPreviewsText(t *testing.T) {
	buf := captureDebug(t)
	LogPayload("copied", 1, TextPayload("meeting notes for tuesday"))

	assert.Contains(t, buf.String(), `"preview":"meeting notes for tuesday"`)
}

func TestLogPayloadHidesPasswords(t *testing.T) {
	buf := captureDebug(t)
	LogPayload("copied", 2, TextPayload("hunter2!Secret"))

	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, `"preview"`)
	assert.Contains(t, out, `"size_bytes":14`)
}
