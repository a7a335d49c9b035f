package model

import "time"

// ユーザー操作の種類
type ActivityAction string

const (
	ActivityRegister    ActivityAction = "register"
	ActivityLogin       ActivityAction = "login"
	ActivityLogout      ActivityAction = "logout"
	ActivityPageView    ActivityAction = "page_view"
	ActivitySearch      ActivityAction = "search"
	ActivityProductView ActivityAction = "product_view"
	ActivityCartAdd     ActivityAction = "cart_add"
)

// ユーザー操作ログ。
// 「誰が」「何を」「どこから」を残す。detailsはJSON文字列。
type Activity struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id" firestore:"-"`

	UserID string `gorm:"type:varchar(36);not null;index" json:"user_id" firestore:"user_id"`

	UserEmail string `gorm:"type:varchar(255)" json:"user_email" firestore:"user_email"`

	Action ActivityAction `gorm:"type:varchar(100);not null;index" json:"action" firestore:"action"`

	DetailsJSON string `gorm:"type:text" json:"details" firestore:"details"`

	IPAddress string `gorm:"type:varchar(45)" json:"ip_address" firestore:"ip_address"`

	UserAgent string `gorm:"type:text" json:"user_agent" firestore:"user_agent"`

	Timestamp time.Time `gorm:"not null;index" json:"timestamp" firestore:"timestamp"`
}
