package logging

import (
	"context"
	"testing"
)

func TestWithSessionID(t *testing.T) {
	ctx := context.Background()
	sessionID := "test-5f1c2a7d23"

	ctx = WithSessionID(ctx, sessionID)
	got := GetSessionID(ctx)

	if got != sessionID {
		t.Errorf("GetSessionID() = %q, want %q", got, sessionID)
	}
}

func TestWithListID(t *testing.T) {
	ctx := context.Background()
	listID := "test-lst_456"

	ctx = WithListID(ctx, listID)
	got := GetListID(ctx)

	if got != listID {
		t.Errorf("GetListID() = %q, want %q", got, listID)
	}
}

func TestGetSessionID_NotPresent(t *testing.T) {
	ctx := context.Background()
	got := GetSessionID(ctx)

	if got != "" {
		t.Errorf("GetSessionID() = %q, want empty string", got)
	}
}

func TestGetListID_NotPresent(t *testing.T) {
	ctx := context.Background()
	got := GetListID(ctx)

	if got != "" {
		t.Errorf("GetListID() = %q, want empty string", got)
	}
}

func TestBothIDs(t *testing.T) {
	ctx := context.Background()
	sessionID := "5f1c2a7d"
	listID := "lst_1"

	ctx = WithSessionID(ctx, sessionID)
	ctx = WithListID(ctx, listID)

	if got := GetSessionID(ctx); got != sessionID {
		t.Errorf("GetSessionID() = %q, want %q", got, sessionID)
	}

	if got := GetListID(ctx); got != listID {
		t.Errorf("GetListID() = %q, want %q", got, listID)
	}
}

func TestWithUserID(t *testing.T) {
	ctx := WithUserID(context.Background(), "u-42")

	if got := GetUserID(ctx); got != "u-42" {
		t.Errorf("GetUserID() = %q, want %q", got, "u-42")
	}

	if got := GetUserID(context.Background()); got != "" {
		t.Errorf("GetUserID() = %q, want empty string", got)
	}
}
