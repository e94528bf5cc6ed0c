package model

import "time"

// メール認証用のワンタイムトークン。usedはfalse→trueに一度だけ遷移する。
type VerificationToken struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;index"`
	TokenHash string    `json:"-" gorm:"not null;uniqueIndex"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}
