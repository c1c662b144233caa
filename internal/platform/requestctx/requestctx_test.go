package requestctx

import (
	"context"
	"testing"
)

func TestUserIDFromContextRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	got, ok := UserIDFromContext(ctx)
	if !ok {
		t.Fatal("expected resolved identity")
	}
	if got != 42 {
		t.Fatalf("UserIDFromContext = %d, want 42", got)
	}
}

func TestUserIDFromContextEmpty(t *testing.T) {
	got, ok := UserIDFromContext(context.Background())
	if ok {
		t.Fatal("expected no identity")
	}
	if got != 0 {
		t.Fatalf("expected zero id, got %d", got)
	}
}

func TestUserIDFromContextNil(t *testing.T) {
	if _, ok := UserIDFromContext(nil); ok {
		t.Fatal("expected no identity for nil context")
	}
}

func TestWithUserIDNilContext(t *testing.T) {
	ctx := WithUserID(nil, 99)
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if got, _ := UserIDFromContext(ctx); got != 99 {
		t.Fatalf("UserIDFromContext = %d, want 99", got)
	}
}
