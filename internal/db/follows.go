package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm/clause"

	"github.com/quillhub/quill/internal/models"
)

// ErrSelfFollow is returned when a user attempts to follow themselves.
var ErrSelfFollow = errors.New("a user cannot follow themselves")

// FollowRepository provides follow-edge database operations
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// Create adds a follow edge from user to author.
// A duplicate edge is a silent no-op: the unique (user, author) index plus
// ON CONFLICT DO NOTHING leaves exactly one row no matter how often the
// same edge is created.
func (r *FollowRepository) Create(ctx context.Context, userID, authorID int64) error {
	if userID == authorID {
		return ErrSelfFollow
	}
	follow := &models.Follow{
		UserID:    userID,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(follow).Error
}

// Delete removes the follow edge if present; absent edges are a no-op.
func (r *FollowRepository) Delete(ctx context.Context, userID, authorID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{}).Error
}

// Exists reports whether user follows author
func (r *FollowRepository) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
