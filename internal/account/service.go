// Package account はアカウント管理のドメインロジックを提供する。
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/accountd/internal/model"
	"github.com/hitoshi/accountd/internal/repository"
)

// MetricsRecorder はサービス層が記録するドメインメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordAccountCreated()
	RecordAccountDeleted()
	RecordStoreError(op string)
}

// Service はアカウント管理のサービス層。
// 入力検証と永続化を調停し、ドメインエラーを*model.APIErrorとして返す。
type Service struct {
	repo     repository.AccountRepository
	validate *validator.Validate
	metrics  MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい（テスト用途）。
func NewService(repo repository.AccountRepository, metrics MetricsRecorder) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		metrics:  metrics,
	}
}

// Create は新規アカウントを作成し、採番されたIDをaccount.IDに書き戻す。
// 必須フィールドが欠けている場合は*model.APIError（VALIDATION_ERROR）を返す。
// date_joined未指定時は当日の日付を設定する。
func (s *Service) Create(ctx context.Context, account *model.Account) error {
	if err := s.validateAccount(account); err != nil {
		return err
	}

	if account.DateJoined.IsZero() {
		account.DateJoined = model.Today()
	}

	if err := s.repo.Create(ctx, account); err != nil {
		s.recordStoreError("create")
		slog.Error("failed to create account", slog.String("error", err.Error()))
		return model.NewStoreError("create account")
	}

	if s.metrics != nil {
		s.metrics.RecordAccountCreated()
	}
	slog.Info("account created", slog.Int64("account_id", account.ID))

	return nil
}

// Get は指定IDのアカウントを返す。見つからない場合は(nil, nil)を返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.recordStoreError("find")
		slog.Error("failed to find account",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError("retrieve account")
	}
	return account, nil
}

// List は全アカウントを登録順（ID昇順）で返す。
func (s *Service) List(ctx context.Context) ([]*model.Account, error) {
	accounts, err := s.repo.All(ctx)
	if err != nil {
		s.recordStoreError("list")
		slog.Error("failed to list accounts", slog.String("error", err.Error()))
		return nil, model.NewStoreError("retrieve accounts")
	}
	return accounts, nil
}

// Update は指定IDのアカウントの可変フィールドを全置換する。IDは変更されない。
// 対象が存在しない場合は*model.APIError（ACCOUNT_NOT_FOUND）を返す。
// date_joined未指定時は既存の値を維持する。
func (s *Service) Update(ctx context.Context, id int64, account *model.Account) (*model.Account, error) {
	if err := s.validateAccount(account); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.recordStoreError("find")
		slog.Error("failed to find account for update",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError("retrieve account")
	}
	if existing == nil {
		return nil, model.NewAccountNotFoundError(id)
	}

	account.ID = id
	if account.DateJoined.IsZero() {
		account.DateJoined = existing.DateJoined
	}

	if err := s.repo.Update(ctx, account); err != nil {
		s.recordStoreError("update")
		slog.Error("failed to update account",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError("update account")
	}

	slog.Info("account updated", slog.Int64("account_id", id))

	return account, nil
}

// Delete は指定IDのアカウントを削除する。
// 対象が存在しない場合も成功として扱う（冪等）。
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		s.recordStoreError("delete")
		slog.Error("failed to delete account",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()),
		)
		return model.NewStoreError("delete account")
	}

	if s.metrics != nil {
		s.metrics.RecordAccountDeleted()
	}
	slog.Info("account deleted", slog.Int64("account_id", id))

	return nil
}

// validateAccount は必須フィールドを検証し、欠落分をVALIDATION_ERRORとして報告する。
func (s *Service) validateAccount(account *model.Account) error {
	err := s.validate.Struct(account)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate account: %w", err)
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fieldJSONName(fe.Field()))
	}
	return model.NewValidationError(missing...)
}

func (s *Service) recordStoreError(op string) {
	if s.metrics != nil {
		s.metrics.RecordStoreError(op)
	}
}

// fieldJSONName はモデルのフィールド名をAPI上のフィールド名に変換する。
func fieldJSONName(field string) string {
	if field == "PhoneNumber" {
		return "phone_number"
	}
	return strings.ToLower(field)
}
