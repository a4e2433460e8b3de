package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quillhub/quill/internal/models"
)

// PostFilter narrows a post listing. Zero fields are ignored; the zero
// filter lists every post.
type PostFilter struct {
	GroupID    int64 // posts filed under a group
	AuthorID   int64 // posts by one author
	FollowedBy int64 // posts by authors this user follows
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

func (r *PostRepository) filtered(ctx context.Context, filter PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.GroupID != 0 {
		q = q.Where("group_id = ?", filter.GroupID)
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.FollowedBy != 0 {
		followed := r.db.Model(&models.Follow{}).
			Select("author_id").
			Where("user_id = ?", filter.FollowedBy)
		q = q.Where("author_id IN (?)", followed)
	}
	return q
}

// List retrieves posts matching the filter, newest first.
// The id tie-break keeps ordering stable for posts sharing a pub_date.
func (r *PostRepository) List(ctx context.Context, filter PostFilter, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.filtered(ctx, filter).
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC, id DESC")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of posts matching the filter
func (r *PostRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a new post. PubDate is stamped at creation time.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.PubDate.IsZero() {
		post.PubDate = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

// Update persists changes to an existing post
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}
