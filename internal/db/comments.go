package db

import (
	"context"
	"time"

	"github.com/quillhub/quill/internal/models"
)

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// ListByPost retrieves a post's comments, newest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC, id DESC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Create creates a new comment. Created is stamped at creation time.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.Created.IsZero() {
		comment.Created = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(comment).Error
}
