package model

import "time"

// CommentModel mirrors the 'comments' table.
type CommentModel struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	PostID    int64      `gorm:"not null;index"`
	Post      *PostModel `gorm:"foreignKey:PostID"`
	AuthorID  int64      `gorm:"column:user_id;not null;index"`
	Author    *UserModel `gorm:"foreignKey:AuthorID"`
	Content   string     `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (CommentModel) TableName() string {
	return "comments"
}

// LikeModel mirrors the 'likes' table. The composite key keeps one row per (user, post).
type LikeModel struct {
	UserID    int64      `gorm:"primaryKey;autoIncrement:false"`
	User      *UserModel `gorm:"foreignKey:UserID"`
	PostID    int64      `gorm:"primaryKey;autoIncrement:false;index"`
	Post      *PostModel `gorm:"foreignKey:PostID"`
	CreatedAt time.Time  `gorm:"not null"`
	DeletedAt *time.Time
}

// TableName explicitly sets the table name for GORM.
func (LikeModel) TableName() string {
	return "likes"
}

// All lists every model in foreign-key order for migrations.
func All() []any {
	return []any{
		&UserModel{},
		&RefreshTokenModel{},
		&PostModel{},
		&ImageModel{},
		&PostCountModel{},
		&CommentModel{},
		&LikeModel{},
	}
}
