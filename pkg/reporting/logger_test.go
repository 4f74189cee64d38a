package reporting

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerJSONOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelWarn, Format: LogFormatJSON, Output: &buf})

	logger.Info("should not appear")
	assert.Empty(t, buf.String())

	logger.Warn("should appear", "key", "value")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "should appear", entry["message"])
	assert.Equal(t, "value", entry["key"])
}

func TestLoggerWithFieldsAddsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelDebug, Format: LogFormatJSON, Output: &buf})
	child := logger.WithField("run_id", "abc123")

	child.Info("hello")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc123", entry["run_id"])
}
