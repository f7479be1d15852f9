// Chat repository: channel creation, lookup, title search, and the atomic
// members_count counter. The counter is denormalized; it is only ever
// mutated through IncrementMembers/DecrementMembers so that concurrent
// joins of different users touch the row with a single SQL expression
// instead of a read-modify-write.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-messenger-backend/internal/domain"
)

// searchLimit caps channel search results, mirroring the public API page cap.
const searchLimit = 100

// CreateChat inserts a new chat row with a UUID primary key.
func CreateChat(ctx context.Context, db *gorm.DB, ownerID, title, kind string) (*domain.Chat, error) {
	c := &domain.Chat{
		ID:        uuid.NewString(),
		Title:     title,
		Kind:      kind,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetChat fetches a chat by id regardless of kind.
func GetChat(ctx context.Context, db *gorm.DB, id string) (*domain.Chat, error) {
	var c domain.Chat
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetChannel fetches a chat by id, restricted to broadcast channels.
// Returns ErrNotFound when the id resolves to a direct or group chat.
func GetChannel(ctx context.Context, db *gorm.DB, id string) (*domain.Chat, error) {
	var c domain.Chat
	err := db.WithContext(ctx).
		Where("kind = ?", domain.ChatKindChannel).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SearchChannels returns broadcast channels whose title contains the given
// fragment, capped at searchLimit rows.
func SearchChannels(ctx context.Context, db *gorm.DB, title string) ([]domain.Chat, error) {
	var out []domain.Chat
	err := db.WithContext(ctx).
		Where("kind = ?", domain.ChatKindChannel).
		Where("title LIKE ?", "%"+title+"%").
		Order("members_count DESC").
		Limit(searchLimit).
		Find(&out).Error
	return out, err
}

// IncrementMembers bumps the denormalized member counter by delta (which may
// be negative) in a single UPDATE. Returns ErrNotFound when no row matched.
func IncrementMembers(ctx context.Context, db *gorm.DB, chatID string, delta int) error {
	res := db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		UpdateColumn("members_count", gorm.Expr("members_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
