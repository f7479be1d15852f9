package repo

import (
	"context"
	"testing"
	"time"
)

func TestGetRestriction_AbsentIsNilNil(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	r, err := GetRestriction(ctx, db, "c1", "u1", "mute")
	if err != nil {
		t.Fatalf("GetRestriction: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil for absent restriction, got %+v", r)
	}
}

func TestReplaceRestriction_KeepsSingleRowPerKey(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := ReplaceRestriction(ctx, db, "c1", "u1", "mute", t0, t0.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}
	second, err := ReplaceRestriction(ctx, db, "c1", "u1", "mute", t0, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("replacement should be a new row")
	}

	n, err := CountRestrictions(ctx, db, "c1", "u1", "mute")
	if err != nil {
		t.Fatalf("CountRestrictions: %v", err)
	}
	if n != 1 {
		t.Fatalf("want exactly 1 restriction row, got %d", n)
	}

	got, err := GetRestriction(ctx, db, "c1", "u1", "mute")
	if err != nil {
		t.Fatalf("GetRestriction: %v", err)
	}
	if !got.ExpiresAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("expiry not replaced: %v", got.ExpiresAt)
	}
}

func TestReplaceRestriction_KindsAreIndependent(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := ReplaceRestriction(ctx, db, "c1", "u1", "mute", t0, t0.Add(time.Hour)); err != nil {
		t.Fatalf("mute: %v", err)
	}
	if _, err := ReplaceRestriction(ctx, db, "c1", "u1", "ban", t0, t0.Add(time.Hour)); err != nil {
		t.Fatalf("ban: %v", err)
	}

	for _, kind := range []string{"mute", "ban"} {
		n, err := CountRestrictions(ctx, db, "c1", "u1", kind)
		if err != nil {
			t.Fatalf("count %s: %v", kind, err)
		}
		if n != 1 {
			t.Fatalf("kind %s: want 1 row, got %d", kind, n)
		}
	}
}

func TestDeleteRestriction_GoneAlreadyIsFine(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	if err := DeleteRestriction(ctx, db, "missing-id"); err != nil {
		t.Fatalf("deleting an absent restriction should not error: %v", err)
	}
}
