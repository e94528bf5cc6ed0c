package model

import "time"

type User struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Email        string `gorm:"uniqueIndex:uq_users_email_username;not null"`
	Username     string `gorm:"uniqueIndex:uq_users_email_username;not null"`
	PasswordHash string `gorm:"column:hashed_password;type:text;not null"`
	FirstName    string
	LastName     string
	IsVerified   bool `gorm:"not null;default:false"`
	IsActive     bool `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ログイン可能か（停止されておらず、メール認証済み）
func (u *User) CanLogin() bool {
	return u.IsActive && u.IsVerified
}
