// Message store: create, lookup scoped to a chat, edit, soft delete,
// paginated listing, and text search.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-messenger-backend/internal/domain"
)

// CreateMessage inserts a message with a fresh UUID and a server-assigned
// UTC timestamp.
func CreateMessage(ctx context.Context, db *gorm.DB, chatID, userID, text string) (*domain.Message, error) {
	m := &domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetMessage fetches a message by id, scoped to the given chat. A message
// id that exists in another chat is ErrNotFound here.
func GetMessage(ctx context.Context, db *gorm.DB, chatID, id string) (*domain.Message, error) {
	var m domain.Message
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMessageText overwrites the text and stamps edited_at.
// Returns ErrNotFound when the message no longer exists.
func UpdateMessageText(ctx context.Context, db *gorm.DB, chatID, id, text string, editedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ? AND chat_id = ?", id, chatID).
		Updates(map[string]any{"text": text, "edited_at": editedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMessage soft-deletes a message. Returns ErrNotFound when the
// message is already gone, which callers treat as an idempotent failure.
func DeleteMessage(ctx context.Context, db *gorm.DB, chatID, id string) error {
	res := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&domain.Message{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMessages returns the number of live messages in a chat.
func CountMessages(ctx context.Context, db *gorm.DB, chatID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("chat_id = ?", chatID).
		Count(&n).Error
	return n, err
}

// ListMessagesPage returns one page of messages for a chat, oldest first.
func ListMessagesPage(ctx context.Context, db *gorm.DB, chatID string, offset, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SearchMessages returns messages in a chat whose text contains the
// fragment, newest first, capped at searchLimit rows.
func SearchMessages(ctx context.Context, db *gorm.DB, chatID, text string) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Where("text LIKE ?", "%"+text+"%").
		Order("created_at DESC").
		Limit(searchLimit).
		Find(&out).Error
	return out, err
}
