// Package model はクライアント側の状態の型とエラー。
package model

import (
	"errors"
	"time"
)

var (
	// 未ログインでカート/ウィッシュリストを変更しようとした
	ErrUnauthenticated = errors.New("unauthenticated")
	// 通信失敗・タイムアウト・サーバー側の失敗
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// 保存データが読めない
	ErrMalformedPersistedState = errors.New("malformed persisted state")
	// 登録済みのメールアドレス
	ErrDuplicateRegistration = errors.New("duplicate registration")
	// トークン/セッションが無効（401）
	ErrUnauthorized = errors.New("unauthorized")
)

// ログイン中のユーザー
type Identity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token,omitempty"`
}

// カートの1行。ProductIDで一意。
type CartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Quantity  int64  `json:"quantity"`
}

// カートに入れる商品
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Image string `json:"image"`
}

// サーバー側のセッション
type SessionRecord struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
