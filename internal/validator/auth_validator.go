package validator

import (
	"regexp"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

var emailLike = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 認証まわりの独自タグ
func registerAuthRules(v *playground.Validate) {
	// 簡易メール形式
	_ = v.RegisterValidation("emaillike", func(fl playground.FieldLevel) bool {
		return isEmailLike(strings.TrimSpace(fl.Field().String()))
	})
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailLike.MatchString(s)
}
