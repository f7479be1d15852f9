package repo

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/tbourn/go-messenger-backend/internal/domain"
)

func TestMembership_CreateGetHas(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	m, err := CreateMembership(ctx, db, "c1", "u1", domain.RoleMember)
	if err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}
	if m.ID == "" || m.Role != domain.RoleMember {
		t.Fatalf("unexpected membership: %+v", m)
	}

	got, err := GetMembership(ctx, db, "c1", "u1")
	if err != nil {
		t.Fatalf("GetMembership: %v", err)
	}
	if got.ID != m.ID {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", got, m)
	}

	has, err := HasMembership(ctx, db, "c1", "u1")
	if err != nil || !has {
		t.Fatalf("HasMembership = %v, %v; want true", has, err)
	}
	has, err = HasMembership(ctx, db, "c1", "stranger")
	if err != nil || has {
		t.Fatalf("HasMembership stranger = %v, %v; want false", has, err)
	}
}

func TestMembership_UniquePerChatUser(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	if _, err := CreateMembership(ctx, db, "c1", "u1", domain.RoleMember); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := CreateMembership(ctx, db, "c1", "u1", domain.RoleMember); err == nil {
		t.Fatal("expected unique index violation on duplicate membership")
	}

	var n int64
	if err := db.Model(&domain.Membership{}).Where("chat_id = ? AND user_id = ?", "c1", "u1").Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("want exactly 1 membership row, got %d", n)
	}
}

func TestDeleteMembership_NotFound(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	if _, err := CreateMembership(ctx, db, "c1", "u1", domain.RoleMember); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := DeleteMembership(ctx, db, "c1", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeleteMembership(ctx, db, "c1", "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestListMemberIDs(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	for _, u := range []string{"u1", "u2", "u3"} {
		if _, err := CreateMembership(ctx, db, "c1", u, domain.RoleMember); err != nil {
			t.Fatalf("create %s: %v", u, err)
		}
	}
	_, _ = CreateMembership(ctx, db, "c2", "u9", domain.RoleMember)

	ids, err := ListMemberIDs(ctx, db, "c1")
	if err != nil {
		t.Fatalf("ListMemberIDs: %v", err)
	}
	sort.Strings(ids)
	want := []string{"u1", "u2", "u3"}
	if len(ids) != len(want) {
		t.Fatalf("want %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("want %v, got %v", want, ids)
		}
	}
}
