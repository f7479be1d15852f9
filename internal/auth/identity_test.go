package auth

import (
	"context"
	"testing"
)

func TestIdentityRoundtrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), "u1")

	id, ok := IdentityFrom(ctx)
	if !ok || id != "u1" {
		t.Fatalf("IdentityFrom = %q, %v", id, ok)
	}
}

func TestIdentityFrom_AbsentOrEmpty(t *testing.T) {
	if _, ok := IdentityFrom(context.Background()); ok {
		t.Fatal("identity reported on a bare context")
	}
	if _, ok := IdentityFrom(WithIdentity(context.Background(), "")); ok {
		t.Fatal("empty identity must not count as authenticated")
	}
}
