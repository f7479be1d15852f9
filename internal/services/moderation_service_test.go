package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-messenger-backend/internal/domain"
	"github.com/tbourn/go-messenger-backend/internal/repo"
)

var modT0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newModSvc(t *testing.T) (*ModerationService, *testClock) {
	t.Helper()
	svc := NewModerationService(newSvcDB(t))
	clock := newTestClock(modT0)
	svc.Now = clock.Now
	return svc, clock
}

func TestImpose_Validation(t *testing.T) {
	svc, _ := newModSvc(t)
	ctx := context.Background()

	if _, err := svc.Impose(ctx, "c1", "u1", domain.RestrictionMute, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("zero duration: want ErrInvalidDuration, got %v", err)
	}
	if _, err := svc.Impose(ctx, "c1", "u1", domain.RestrictionMute, -time.Minute); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("negative duration: want ErrInvalidDuration, got %v", err)
	}
	if _, err := svc.Impose(ctx, "c1", "u1", "shadowban", time.Minute); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("bad kind: want ErrInvalidKind, got %v", err)
	}
}

func TestImpose_ReplacesActiveRestriction(t *testing.T) {
	svc, _ := newModSvc(t)
	ctx := context.Background()

	if _, err := svc.Impose(ctx, "c1", "u1", domain.RestrictionMute, 10*time.Minute); err != nil {
		t.Fatalf("first impose: %v", err)
	}
	if _, err := svc.Impose(ctx, "c1", "u1", domain.RestrictionMute, time.Hour); err != nil {
		t.Fatalf("second impose: %v", err)
	}

	n, err := repo.CountRestrictions(ctx, svc.DB, "c1", "u1", domain.RestrictionMute)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("want exactly one active restriction per key, got %d", n)
	}

	restricted, until, err := svc.CheckRestriction(ctx, "c1", "u1", domain.RestrictionMute)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !restricted {
		t.Fatal("expected active restriction")
	}
	if want := modT0.Add(time.Hour); !until.Equal(want) {
		t.Fatalf("expiry not replaced: got %v want %v", until, want)
	}
}

func TestCheckRestriction_BanWindow(t *testing.T) {
	svc, clock := newModSvc(t)
	ctx := context.Background()

	if _, err := svc.Impose(ctx, "c1", "u1", domain.RestrictionBan, time.Hour); err != nil {
		t.Fatalf("impose: %v", err)
	}

	clock.Advance(30 * time.Minute)
	banned, until, err := svc.CheckRestriction(ctx, "c1", "u1", domain.RestrictionBan)
	if err != nil || !banned {
		t.Fatalf("at t0+30m: banned=%v err=%v, want banned", banned, err)
	}
	if want := modT0.Add(time.Hour); !until.Equal(want) {
		t.Fatalf("until = %v, want %v", until, want)
	}

	clock.Advance(31 * time.Minute) // t0+61m, past expiry
	banned, _, err = svc.CheckRestriction(ctx, "c1", "u1", domain.RestrictionBan)
	if err != nil || banned {
		t.Fatalf("at t0+61m: banned=%v err=%v, want not banned", banned, err)
	}
}

func TestCheckRestriction_ExpiryIsIdempotent(t *testing.T) {
	svc, clock := newModSvc(t)
	ctx := context.Background()

	if _, err := svc.Impose(ctx, "c1", "u1", domain.RestrictionMute, 10*time.Minute); err != nil {
		t.Fatalf("impose: %v", err)
	}
	clock.Advance(11 * time.Minute)

	// Repeated checks after expiry: same answer, and the stale row is gone.
	for i := 0; i < 3; i++ {
		restricted, _, err := svc.CheckRestriction(ctx, "c1", "u1", domain.RestrictionMute)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if restricted {
			t.Fatalf("check %d: expired restriction still reported active", i)
		}
	}
	n, err := repo.CountRestrictions(ctx, svc.DB, "c1", "u1", domain.RestrictionMute)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expired row not cleaned up: %d", n)
	}
}

func TestCheckRestriction_ExactExpiryInstantIsInactive(t *testing.T) {
	svc, clock := newModSvc(t)
	ctx := context.Background()

	if _, err := svc.Impose(ctx, "c1", "u1", domain.RestrictionMute, 10*time.Minute); err != nil {
		t.Fatalf("impose: %v", err)
	}
	clock.Advance(10 * time.Minute) // now == expires-at

	restricted, _, err := svc.CheckRestriction(ctx, "c1", "u1", domain.RestrictionMute)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if restricted {
		t.Fatal("restriction at the exact expiry instant must be inactive")
	}
}

func TestImposeRestriction_RoleChecks(t *testing.T) {
	svc, _ := newModSvc(t)
	ctx := context.Background()

	seed := func(userID, role string) {
		t.Helper()
		if _, err := repo.CreateMembership(ctx, svc.DB, "c1", userID, role); err != nil {
			t.Fatalf("seed membership %s: %v", userID, err)
		}
	}
	seed("owner", domain.RoleOwner)
	seed("mod", domain.RoleModerator)
	seed("pleb", domain.RoleMember)
	seed("target", domain.RoleMember)

	// Self-restriction is always rejected.
	if _, err := svc.ImposeRestriction(ctx, "mod", "c1", "mod", domain.RestrictionMute, time.Minute); !errors.Is(err, ErrForbidden) {
		t.Fatalf("self: want ErrForbidden, got %v", err)
	}
	// Strangers and plain members cannot restrict.
	if _, err := svc.ImposeRestriction(ctx, "stranger", "c1", "target", domain.RestrictionMute, time.Minute); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger: want ErrForbidden, got %v", err)
	}
	if _, err := svc.ImposeRestriction(ctx, "pleb", "c1", "target", domain.RestrictionMute, time.Minute); !errors.Is(err, ErrForbidden) {
		t.Fatalf("member: want ErrForbidden, got %v", err)
	}
	// Moderator and owner can.
	if _, err := svc.ImposeRestriction(ctx, "mod", "c1", "target", domain.RestrictionMute, time.Minute); err != nil {
		t.Fatalf("moderator: %v", err)
	}
	if _, err := svc.ImposeRestriction(ctx, "owner", "c1", "target", domain.RestrictionBan, time.Minute); err != nil {
		t.Fatalf("owner: %v", err)
	}
}
