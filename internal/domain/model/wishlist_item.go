package model

import "time"

type WishlistItem struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey" json:"-"`
	ProductID string    `gorm:"type:varchar(64);primaryKey" json:"product_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
