package models

// Group represents a thematic group posts can be filed under
type Group struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;column:id"`
	Title       string `gorm:"type:varchar(200);not null;column:title"`
	Slug        string `gorm:"type:varchar(255);not null;uniqueIndex:groups_slug_ux;column:slug"`
	Description string `gorm:"type:text;not null;default:'';column:description"`
}

// TableName specifies the table name for Group
func (Group) TableName() string {
	return "groups"
}
