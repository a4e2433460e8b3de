package models

import (
	"time"
)

// Comment represents a comment under a post
type Comment struct {
	ID       int64     `gorm:"primaryKey;autoIncrement;column:id"`
	AuthorID int64     `gorm:"not null;column:author_id"`
	PostID   int64     `gorm:"not null;index:comments_post_ix;column:post_id"`
	Text     string    `gorm:"type:text;not null;column:text"`
	Created  time.Time `gorm:"not null;column:created"`

	// Relationships
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Post   *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
