package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWithRunID(t *testing.T) {
	tests := []struct {
		name  string
		ctx   context.Context
		runID string
		want  string
	}{
		{name: "nil context", ctx: nil, runID: "run-1", want: "run-1"},
		{name: "background context", ctx: context.Background(), runID: "run-2", want: "run-2"},
		{name: "empty run ID", ctx: context.Background(), runID: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithRunID(tt.ctx, tt.runID)
			assert.Equal(t, tt.want, RunIDFromContext(ctx))
		})
	}
}

func TestRunIDFromContextWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), runIDKey, 42)
	assert.Equal(t, "", RunIDFromContext(ctx))
	assert.Equal(t, "", RunIDFromContext(nil))
}

func TestFromContextAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := l.WithContext(context.Background())
	ctx = ContextWithRunID(ctx, "abc")

	got := FromContext(ctx)
	got.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "hello", entry["message"])
}

func TestReconfigureWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Reconfigure(Config{}) })

	l := WithComponent("test")
	l.Debug().Str("k", "v").Msg("configured")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "dscmd", entry["service"])
	assert.Equal(t, "debug", entry["level"])
}
