package models

import (
	"database/sql"
	"time"
)

// Post represents an authored post.
//
// PubDate is set once at creation and never updated; listings order by it
// descending. GroupID is optional: deleting a group detaches its posts,
// deleting the author removes them.
type Post struct {
	ID       int64         `gorm:"primaryKey;autoIncrement;column:id"`
	Text     string        `gorm:"type:text;not null;column:text"`
	PubDate  time.Time     `gorm:"not null;index:posts_pub_date_ix;column:pub_date"`
	GroupID  sql.NullInt64 `gorm:"column:group_id"`
	AuthorID int64         `gorm:"not null;index:posts_author_ix;column:author_id"`
	Image    string        `gorm:"type:varchar(1024);not null;default:'';column:image"`

	// Relationships
	Group  *Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:SET NULL"`
	Author *User  `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}
