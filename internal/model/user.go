package model

import "time"

// User 店主账号（邮箱登录）
type User struct {
	BaseModel
	Email           string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name            string     `gorm:"size:100" json:"name"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// LoginToken 邮箱登录链接令牌，只存 bcrypt 哈希，一次性使用
type LoginToken struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Email     string     `gorm:"size:255;index;not null"`
	TokenHash string     `gorm:"size:255;not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (LoginToken) TableName() string {
	return "login_tokens"
}
