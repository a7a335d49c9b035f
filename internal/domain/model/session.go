package model

import "time"

// ログインセッション。作成時点から固定TTL（アクセスしても延長しない）。
type Session struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"session_id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	UserAgent string    `gorm:"type:text" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
