package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-messenger-backend/internal/domain"
)

func TestCreateMessage_And_GetIsChatScoped(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	msg, err := CreateMessage(ctx, db, "c1", "u1", "hello")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if msg.ID == "" || msg.ChatID != "c1" || msg.UserID != "u1" || msg.Text != "hello" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.CreatedAt.IsZero() || time.Since(msg.CreatedAt) > time.Minute {
		t.Fatalf("CreatedAt not set reasonably: %v", msg.CreatedAt)
	}

	if _, err := GetMessage(ctx, db, "c1", msg.ID); err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	// Same id through another chat must not resolve.
	if _, err := GetMessage(ctx, db, "c2", msg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-chat get: want ErrNotFound, got %v", err)
	}
}

func TestUpdateMessageText_SetsEditedAt(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	msg, err := CreateMessage(ctx, db, "c1", "u1", "before")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	editedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := UpdateMessageText(ctx, db, "c1", msg.ID, "after", editedAt); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := GetMessage(ctx, db, "c1", msg.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != "after" {
		t.Fatalf("text not updated: %+v", got)
	}
	if got.EditedAt == nil || !got.EditedAt.Equal(editedAt) {
		t.Fatalf("edited_at not stamped: %+v", got.EditedAt)
	}

	if err := UpdateMessageText(ctx, db, "c1", "missing", "x", editedAt); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing update: want ErrNotFound, got %v", err)
	}
}

func TestDeleteMessage_SoftDeleteHidesRow(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	msg, err := CreateMessage(ctx, db, "c1", "u1", "bye")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := DeleteMessage(ctx, db, "c1", msg.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetMessage(ctx, db, "c1", msg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted get: want ErrNotFound, got %v", err)
	}
	if err := DeleteMessage(ctx, db, "c1", msg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: want ErrNotFound, got %v", err)
	}

	n, err := CountMessages(ctx, db, "c1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("soft-deleted row still counted: %d", n)
	}

	// Row still exists physically with deleted_at set.
	var raw int64
	if err := db.Unscoped().Model(&domain.Message{}).Where("chat_id = ?", "c1").Count(&raw).Error; err != nil {
		t.Fatalf("unscoped count: %v", err)
	}
	if raw != 1 {
		t.Fatalf("expected soft delete to keep the row, got %d", raw)
	}
}

func TestListMessagesPage_OrderAndOffset(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	// Deterministic ordering via explicit timestamps.
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, text := range []string{"one", "two", "three"} {
		m := &domain.Message{
			ID:        text,
			ChatID:    "c1",
			UserID:    "u1",
			Text:      text,
			CreatedAt: t0.Add(time.Duration(i) * time.Second),
		}
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed %s: %v", text, err)
		}
	}

	page, err := ListMessagesPage(ctx, db, "c1", 1, 2)
	if err != nil {
		t.Fatalf("ListMessagesPage: %v", err)
	}
	if len(page) != 2 || page[0].Text != "two" || page[1].Text != "three" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestSearchMessages_FragmentNewestFirst(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seed := func(id, text string, at time.Time) {
		if err := db.Create(&domain.Message{ID: id, ChatID: "c1", UserID: "u1", Text: text, CreatedAt: at}).Error; err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	seed("m1", "lunch plans", t0)
	seed("m2", "lunch again", t0.Add(time.Minute))
	seed("m3", "dinner", t0.Add(2*time.Minute))

	got, err := SearchMessages(ctx, db, "c1", "lunch")
	if err != nil {
		t.Fatalf("SearchMessages: %v", err)
	}
	if len(got) != 2 || got[0].ID != "m2" || got[1].ID != "m1" {
		t.Fatalf("unexpected results: %+v", got)
	}
}
