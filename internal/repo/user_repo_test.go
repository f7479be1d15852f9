package repo

import (
	"context"
	"errors"
	"testing"
)

func TestUser_CreateAndLookup(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, db, "Alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("missing id: %+v", u)
	}

	byID, err := GetUser(ctx, db, u.ID)
	if err != nil || byID.Username != "Alice" {
		t.Fatalf("GetUser = %+v, %v", byID, err)
	}
	byEmail, err := GetUserByEmail(ctx, db, "alice@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("GetUserByEmail = %+v, %v", byEmail, err)
	}
}

func TestUser_EmailUnique(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, db, "Alice", "alice@example.com", "h1"); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := CreateUser(ctx, db, "Alice2", "alice@example.com", "h2"); err == nil {
		t.Fatal("expected unique index violation on duplicate email")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := newRepoDB(t)

	if _, err := GetUser(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
