// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/accountd/internal/model"
)

// AccountRepository はアカウントデータの永続化インターフェース。
type AccountRepository interface {
	// Create はアカウントを作成し、採番されたIDをaccount.IDに書き戻す。
	Create(ctx context.Context, account *model.Account) error

	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Account, error)

	// All は全アカウントをID昇順（登録順）で返す。
	All(ctx context.Context) ([]*model.Account, error)

	// Update は指定IDのアカウントの可変フィールドをすべて上書きする。
	// 対象が存在しない場合はエラーを返す。
	Update(ctx context.Context, account *model.Account) error

	// DeleteByID は指定IDのアカウントを削除する。
	// 対象が存在しない場合もエラーとしない（冪等）。
	DeleteByID(ctx context.Context, id int64) error
}
