// Package validator はechoのリクエスト検証（go-playground/validator）。
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// echo.Validator を満たす
type RequestValidator struct {
	v *playground.Validate
}

// DI
func New() *RequestValidator {
	v := playground.New(playground.WithRequiredStructEnabled())

	// エラーはjsonのキー名で返す
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// 空白だけの文字列を弾く
	_ = v.RegisterValidation("notblank", func(fl playground.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	registerAuthRules(v)

	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var ves playground.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		field := ves[0].Field()
		if field == "" {
			field = "field"
		}
		return &FieldError{Field: field, Tag: ves[0].Tag()}
	}
	return err
}

// 最初に失敗したフィールド
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s", e.Field)
}
