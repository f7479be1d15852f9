// Membership store: the (chat, user) rows that record participation.
// The unique index on (chat_id, user_id) is the authoritative guard
// against double joins; the service layer additionally serializes
// join/leave per (chat, user) key.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-messenger-backend/internal/domain"
)

// CreateMembership inserts a membership row for (chatID, userID) with the
// given role. A duplicate pair fails on the unique index.
func CreateMembership(ctx context.Context, db *gorm.DB, chatID, userID, role string) (*domain.Membership, error) {
	m := &domain.Membership{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetMembership fetches the membership row for (chatID, userID).
func GetMembership(ctx context.Context, db *gorm.DB, chatID, userID string) (*domain.Membership, error) {
	var m domain.Membership
	err := db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// HasMembership reports whether (chatID, userID) is a member.
func HasMembership(ctx context.Context, db *gorm.DB, chatID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&n).Error
	return n > 0, err
}

// DeleteMembership removes the membership row for (chatID, userID).
// Returns ErrNotFound when no row existed.
func DeleteMembership(ctx context.Context, db *gorm.DB, chatID, userID string) error {
	res := db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&domain.Membership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMemberIDs returns the user ids of every current member of a chat,
// used to fan out message events to the whole room.
func ListMemberIDs(ctx context.Context, db *gorm.DB, chatID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("chat_id = ?", chatID).
		Pluck("user_id", &ids).Error
	return ids, err
}
