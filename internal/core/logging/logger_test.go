package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Hook(ContextHook{})

	ctx := WithSessionID(context.Background(), "sess-1")
	logger := Component("voice-session")
	logger.Info().Ctx(ctx).Msg("recording")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "voice-session", entry["cmp"])
	assert.Equal(t, "recording", entry["message"])
	assert.Equal(t, "sess-1", entry["session_id"])
}
