package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/elb-access-log-collector/constants"

	json "github.com/goccy/go-json"
)

func TestNewLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "elb-access-log", slog.LevelInfo)

	logger.Info("configured", "aws_key_id", "AKIA", "aws_sec_key", "secret", "region", "us-west-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, redacted, entry["aws_key_id"])
	assert.Equal(t, redacted, entry["aws_sec_key"])
	assert.Equal(t, "us-west-1", entry["region"])
	assert.Equal(t, "elb-access-log", entry["source"])
}

func TestNewLogger_Off(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "elb-access-log", LevelOff)

	logger.Error("dropped")

	assert.Empty(t, buf.String())
}

func Test_getLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		debug bool
		want  slog.Level
	}{
		{name: "default", want: slog.LevelInfo},
		{name: "warn", env: "WARN", want: slog.LevelWarn},
		{name: "error", env: "error", want: slog.LevelError},
		{name: "off", env: "off", want: LevelOff},
		{name: "debug flag wins", env: "error", debug: true, want: slog.LevelDebug},
		{name: "unknown", env: "verbose", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(constants.EnvLogLevel, tt.env)
			assert.Equal(t, tt.want, getLogLevel(tt.debug).Level())
		})
	}
}
