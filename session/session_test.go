package session

import (
	"context"
	"errors"
	"testing"
)

type conn struct{ id int }

func TestFromContext(t *testing.T) {
	ctx := WithContext(context.Background(), &conn{id: 1})
	got, err := FromContext[*conn](ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.id != 1 {
		t.Errorf("Expected id 1, got %d", got.id)
	}
}

func TestFromContext_Missing(t *testing.T) {
	_, err := FromContext[*conn](context.Background())
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
}

func TestFromContext_KeyedByType(t *testing.T) {
	ctx := WithContext(context.Background(), "not a conn")
	if _, err := FromContext[*conn](ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession for a different type, got %v", err)
	}
	if s, err := FromContext[string](ctx); err != nil || s != "not a conn" {
		t.Errorf("Expected string session, got %q, %v", s, err)
	}
}
