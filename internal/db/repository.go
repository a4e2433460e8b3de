package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quillhub/quill/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// GroupRepository provides group-related database operations
type GroupRepository struct {
	*Repository
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(repo *Repository) *GroupRepository {
	return &GroupRepository{Repository: repo}
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// GetBySlug retrieves a group by slug
func (r *GroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// List retrieves all groups ordered by title
func (r *GroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	if err := r.db.WithContext(ctx).Order("title").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Create creates a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}
