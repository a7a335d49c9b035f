package model

import "time"

// カートの明細（1ユーザー×1商品で1行）
// 追加時点の商品名・価格・画像を必ず保存。
type CartItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"-" firestore:"-"`
	UserID            string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_product" json:"-" firestore:"user_id"`
	ProductID         string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_cart_user_product" json:"product_id" firestore:"product_id"`
	Name              string    `gorm:"type:varchar(255);not null" json:"name" firestore:"name"`
	UnitPriceSnapshot int64     `gorm:"not null;column:unit_price_snapshot" json:"price" firestore:"price"`
	Image             string    `gorm:"type:text" json:"image" firestore:"image"`
	Quantity          int64     `gorm:"not null" json:"quantity" firestore:"quantity"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at" firestore:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at" firestore:"updated_at"`
}
