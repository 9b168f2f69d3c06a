// Package model holds the gorm persistence models. Each model mirrors one table.
package model

import "time"

// UserModel mirrors the 'users' table.
type UserModel struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password;type:varchar(255);not null"`
	Nickname     string     `gorm:"type:varchar(30);uniqueIndex;not null"`
	ProfileImage *string    `gorm:"type:varchar(512)"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
	DeletedAt    *time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// RefreshTokenModel mirrors the 'refresh_tokens' table, the relational backing of the refresh ledger.
type RefreshTokenModel struct {
	Token     string     `gorm:"primaryKey;type:varchar(512)"`
	UserID    int64      `gorm:"not null;index"`
	User      *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Email     string     `gorm:"type:varchar(255);not null"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}
