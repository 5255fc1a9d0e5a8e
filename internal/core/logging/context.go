package logging

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	listIDKey    contextKey = "list_id"
	userIDKey    contextKey = "user_id"
)

// WithSessionID adds a session ID to the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithListID adds a list ID to the context.
func WithListID(ctx context.Context, listID string) context.Context {
	return context.WithValue(ctx, listIDKey, listID)
}

// GetSessionID retrieves the session ID from the context.
// Returns empty string if not present.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetListID retrieves the list ID from the context.
// Returns empty string if not present.
func GetListID(ctx context.Context) string {
	if id, ok := ctx.Value(listIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID adds the id of the user driving a voice session.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID retrieves the user ID from the context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
