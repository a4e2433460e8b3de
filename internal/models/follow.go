package models

import (
	"time"
)

// Follow is a directed edge meaning "user follows author".
// The (user, author) pair is unique, so at most one edge exists per pair.
type Follow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64     `gorm:"not null;uniqueIndex:follows_user_author_ux;column:user_id"`
	AuthorID  int64     `gorm:"not null;uniqueIndex:follows_user_author_ux;column:author_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User   *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "follows"
}
