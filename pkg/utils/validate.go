package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrTargetURLInvalid = errors.New("error.target_url_invalid")
	ErrShortCodeInvalid = errors.New("error.shortcode_invalid")
	ErrValidityInvalid  = errors.New("error.validity_invalid")
)

// maxValidityMinutes 保证有效期换算成 time.Duration 不会溢出
const maxValidityMinutes = math.MaxInt64 / int64(time.Minute)

var shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{3,20}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 注册失败说明 tag 写错了，直接 panic
	if err := v.RegisterValidation("absurl", isAbsoluteURL); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("shortcode", isShortCode); err != nil {
		panic(err)
	}
	return v
}

// isAbsoluteURL 必须带 scheme，并且有 host 或 opaque 部分
func isAbsoluteURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return u.IsAbs() && (u.Host != "" || u.Opaque != "")
}

func isShortCode(fl validator.FieldLevel) bool {
	return shortCodePattern.MatchString(fl.Field().String())
}

// ValidateTargetURL 校验目标 URL 是否为合法的绝对地址
func ValidateTargetURL(targetURL string) error {
	if err := validate.Var(targetURL, "required,absurl"); err != nil {
		return ErrTargetURLInvalid
	}
	return nil
}

// ValidateShortCode 校验自定义短码：3-20 位字母或数字
func ValidateShortCode(shortCode string) error {
	if err := validate.Var(shortCode, "required,shortcode"); err != nil {
		return ErrShortCodeInvalid
	}
	return nil
}

// ParseValidity 解析有效期（分钟）
//
// 字段缺失或为 null 时返回 def；其余情况必须是正整数 JSON 数字。
func ParseValidity(raw json.RawMessage, def int) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return def, nil
	}
	// 字符串、布尔值等在这里都会解析失败
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, ErrValidityInvalid
	}
	if f <= 0 || f != math.Trunc(f) || f > float64(maxValidityMinutes) {
		return 0, ErrValidityInvalid
	}
	return int(f), nil
}

// ParseShortCode 解析自定义短码
//
// 字段缺失、为 null 或空字符串时返回 ""，表示由系统生成；非字符串类型视为格式错误。
func ParseShortCode(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var code string
	if err := json.Unmarshal(raw, &code); err != nil {
		return "", ErrShortCodeInvalid
	}
	return code, nil
}
