package model

import "time"

// PostModel mirrors the 'posts' table.
type PostModel struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Title     string     `gorm:"type:varchar(30);not null"`
	Content   string     `gorm:"type:text;not null"`
	AuthorID  int64      `gorm:"column:user_id;not null;index"`
	Author    *UserModel `gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (PostModel) TableName() string {
	return "posts"
}

// ImageModel mirrors the 'images' table.
type ImageModel struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	PostID       int64      `gorm:"not null;index:idx_images_post_order,priority:1"`
	Post         *PostModel `gorm:"foreignKey:PostID"`
	URL          string     `gorm:"column:image_url;type:varchar(512);not null"`
	DisplayOrder int        `gorm:"not null;index:idx_images_post_order,priority:2"`
	CreatedAt    time.Time  `gorm:"not null"`
	DeletedAt    *time.Time
}

// TableName explicitly sets the table name for GORM.
func (ImageModel) TableName() string {
	return "images"
}

// PostCountModel mirrors the 'post_counts' table holding the denormalized aggregate of a post.
type PostCountModel struct {
	PostID       int64      `gorm:"primaryKey;autoIncrement:false"`
	Post         *PostModel `gorm:"foreignKey:PostID"`
	ViewCount    int64      `gorm:"not null;default:0"`
	LikeCount    int64      `gorm:"not null;default:0"`
	CommentCount int64      `gorm:"not null;default:0"`
}

// TableName explicitly sets the table name for GORM.
func (PostCountModel) TableName() string {
	return "post_counts"
}
