package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// 画面の表示設定など（JSONで保存）
type Preferences struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
	Newsletter    bool   `json:"newsletter"`
}

type User struct {
	ID           string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string      `gorm:"type:varchar(255);not null" json:"name"`
	Email        string      `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"column:password_hash;not null" json:"-"`
	Role         Role        `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	TokenVersion int         `gorm:"not null;default:0" json:"token_version"`
	IsActive     bool        `gorm:"not null;default:true" json:"is_active"`
	Preferences  Preferences `gorm:"serializer:json;type:text" json:"preferences"`
	LastLoginAt  *time.Time  `json:"last_login_at"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func DefaultPreferences() Preferences {
	return Preferences{Theme: "light", Notifications: true, Newsletter: false}
}
