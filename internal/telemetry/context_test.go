package telemetry

import (
	"context"
	"testing"
)

func TestWithOpIDRoundTrip(t *testing.T) {
	ctx := WithOpID(context.Background(), "op-123")
	got, ok := OpIDFromContext(ctx)
	if !ok || got != "op-123" {
		t.Fatalf("got %q, %v; want op-123, true", got, ok)
	}
}

func TestOpIDFromContextMissing(t *testing.T) {
	if _, ok := OpIDFromContext(context.Background()); ok {
		t.Fatal("expected no op id on a bare context")
	}
}

func TestWithOpIDNilContext(t *testing.T) {
	ctx := WithOpID(nil, "op-123")
	if got, ok := OpIDFromContext(ctx); !ok || got != "op-123" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestOpIDFromContextEmptyString(t *testing.T) {
	ctx := WithOpID(context.Background(), "")
	if _, ok := OpIDFromContext(ctx); ok {
		t.Fatal("empty id must read back as absent")
	}
}
