package validator

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrInvalidRole      = errors.New("invalid role")
)

// サインアップの入力を検証
func ValidateSignup(email string, password string, role string) error {
	email = strings.TrimSpace(email)

	if email == "" {
		return ErrEmailRequired
	}
	if !isEmailLike(email) {
		return ErrInvalidEmail
	}

	if password == "" {
		return ErrPasswordRequired
	}
	//パスワード最低文字数（MVP: 8）
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	switch strings.ToUpper(strings.TrimSpace(role)) {
	case "", "USER", "ADMIN":
	default:
		return ErrInvalidRole
	}

	return nil
}

// ログインの入力を検証
func ValidateLogin(email string, password string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// email形式チェック
func isEmailLike(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
