package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts session_id, list_id and user_id from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if sessionID := GetSessionID(ctx); sessionID != "" {
		e.Str("session_id", sessionID)
	}

	if listID := GetListID(ctx); listID != "" {
		e.Str("list_id", listID)
	}

	if userID := GetUserID(ctx); userID != "" {
		e.Str("user_id", userID)
	}
}
