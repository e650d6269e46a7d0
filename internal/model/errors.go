// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// クライアントに返す原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, account, store
	Action   string // クライアント向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	ErrCodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	ErrCodeStore                = "STORE_ERROR"
)

// NewValidationError は必須項目不足エラーを生成する。
func NewValidationError(missing ...string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("Invalid Account: missing %s", strings.Join(missing, ", ")),
		Category: "validation",
		Action:   "Provide name, email, address and phone_number as non-empty strings.",
	}
}

// NewMalformedBodyError は解析できないリクエストボディのエラーを生成する。
func NewMalformedBodyError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("Invalid request body: %s", reason),
		Category: "validation",
		Action:   "Send a valid JSON document.",
	}
}

// NewAccountNotFoundError はアカウント未検出エラーを生成する。
func NewAccountNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeAccountNotFound,
		Message:  fmt.Sprintf("Account with id %d could not be found.", id),
		Category: "account",
		Action:   "Check the account id and try again.",
	}
}

// NewUnsupportedMediaTypeError はContent-Type不正エラーを生成する。
func NewUnsupportedMediaTypeError(contentType string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedMediaType,
		Message:  fmt.Sprintf("Content-Type must be application/json, got %q", contentType),
		Category: "validation",
		Action:   "Set the Content-Type header to application/json.",
	}
}

// NewStoreError はストア障害エラーを生成する。
// op には "retrieve accounts" のような操作名が入り、そのままメッセージに埋め込まれる。
func NewStoreError(op string) *APIError {
	return &APIError{
		Code:     ErrCodeStore,
		Message:  fmt.Sprintf("Internal Server Error: Could not %s.", op),
		Category: "store",
		Action:   "Try again later.",
	}
}
