package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New()
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel(), "expected logger to be enabled")
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("dataset loaded")

	assert.Contains(t, buf.String(), "dataset loaded")
}

func TestNewWithConfig(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zerolog.Level
		wantErr   bool
	}{
		{name: "defaults", wantLevel: zerolog.InfoLevel},
		{name: "debug json", level: "debug", format: "json", wantLevel: zerolog.DebugLevel},
		{name: "upper case", level: "WARN", format: "Console", wantLevel: zerolog.WarnLevel},
		{name: "bad level", level: "loud", wantErr: true},
		{name: "bad format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := NewWithConfig(tt.level, tt.format, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, log.GetLevel())
		})
	}
}

func TestNewWithConfig_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := NewWithConfig("info", FormatJSON, buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Int("row_count", 13140).Msg("generated")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "generated", entry["message"])
	assert.EqualValues(t, 13140, entry["row_count"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestWithContext(t *testing.T) {
	ctx := WithContext(context.Background(), New())
	assert.NotNil(t, ctx.Value(LoggerKey), "expected logger in context")
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")

	assert.NotZero(t, buf.Len(), "expected log output from retrieved logger")
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"job_id": "123",
		"action": "regenerate",
	})
	log.Info().Msg("test message")

	out := buf.String()
	assert.Contains(t, out, `"job_id":"123"`)
	assert.Contains(t, out, `"action":"regenerate"`)
}
