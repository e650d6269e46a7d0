// Package model はドメインモデルを定義する。
package model

// Account は顧客アカウントを表す。
// ID はストアが採番するため、作成前はゼロ値のままでよい。
type Account struct {
	ID          int64
	Name        string `validate:"required"`
	Email       string `validate:"required"`
	Address     string `validate:"required"`
	PhoneNumber string `validate:"required"`
	DateJoined  Date
}
