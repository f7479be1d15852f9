// Limit store: per-(chat, user, kind) restriction rows with validity
// windows. The store keeps at most one row per key in practice because
// ReplaceRestriction deletes before inserting inside one transaction;
// GetRestriction still orders by imposed_at so a transiently duplicated key
// resolves to the most recent row.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-messenger-backend/internal/domain"
)

// GetRestriction returns the most recently imposed restriction for
// (chatID, userID, kind), or (nil, nil) when none exists.
func GetRestriction(ctx context.Context, db *gorm.DB, chatID, userID, kind string) (*domain.Restriction, error) {
	var r domain.Restriction
	err := db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ? AND kind = ?", chatID, userID, kind).
		Order("imposed_at DESC").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRestriction removes a restriction row by id. Deleting a row that is
// already gone is not an error; expiry cleanup races are benign.
func DeleteRestriction(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Delete(&domain.Restriction{}, "id = ?", id).Error
}

// ReplaceRestriction atomically supersedes any existing restriction of the
// same kind for (chatID, userID): delete plus insert in one transaction, so
// readers never observe two active rows for the key.
func ReplaceRestriction(ctx context.Context, db *gorm.DB, chatID, userID, kind string, imposedAt, expiresAt time.Time) (*domain.Restriction, error) {
	r := &domain.Restriction{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    userID,
		Kind:      kind,
		ImposedAt: imposedAt,
		ExpiresAt: expiresAt,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("chat_id = ? AND user_id = ? AND kind = ?", chatID, userID, kind).
			Delete(&domain.Restriction{}).Error; err != nil {
			return err
		}
		return tx.Create(r).Error
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CountRestrictions returns the number of restriction rows for a
// (chat, user, kind) key. Used by tests and reconciliation tooling.
func CountRestrictions(ctx context.Context, db *gorm.DB, chatID, userID, kind string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Restriction{}).
		Where("chat_id = ? AND user_id = ? AND kind = ?", chatID, userID, kind).
		Count(&n).Error
	return n, err
}
