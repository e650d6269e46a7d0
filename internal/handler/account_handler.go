package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/accountd/internal/model"
)

// defaultMaxBodyBytes はリクエストボディサイズ上限のデフォルト値（1MiB）。
const defaultMaxBodyBytes = 1 << 20

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	// Create はアカウントを検証して保存し、採番されたIDを書き戻す。
	Create(ctx context.Context, account *model.Account) error
	// Get はIDでアカウントを取得する。存在しない場合は (nil, nil) を返す。
	Get(ctx context.Context, id int64) (*model.Account, error)
	// List は全アカウントをID昇順で返す。
	List(ctx context.Context) ([]*model.Account, error)
	// Update は既存アカウントを全フィールド置換し、更新後の状態を返す。
	Update(ctx context.Context, id int64, account *model.Account) (*model.Account, error)
	// Delete はアカウントを削除する。存在しないIDでもエラーにしない。
	Delete(ctx context.Context, id int64) error
}

// AccountHandler はアカウント管理のHTTPハンドラー。
type AccountHandler struct {
	service      AccountServiceInterface
	maxBodyBytes int64
}

// NewAccountHandler はAccountHandlerを生成する。
// maxBodyBytesが0以下の場合はデフォルト値を使用する。
func NewAccountHandler(service AccountServiceInterface, maxBodyBytes int64) *AccountHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &AccountHandler{
		service:      service,
		maxBodyBytes: maxBodyBytes,
	}
}

// accountRequest はアカウント作成・更新リクエストのボディ。
type accountRequest struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Address     string     `json:"address"`
	PhoneNumber string     `json:"phone_number"`
	DateJoined  model.Date `json:"date_joined"`
}

// accountResponse はアカウント情報のAPIレスポンス。
type accountResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Address     string     `json:"address"`
	PhoneNumber string     `json:"phone_number"`
	DateJoined  model.Date `json:"date_joined"`
}

// listAccountsResponse はアカウント一覧のAPIレスポンス。
type listAccountsResponse struct {
	Accounts []accountResponse `json:"accounts"`
	Len      int               `json:"len"`
}

// readAccountResponse はアカウント単体取得のAPIレスポンス。
type readAccountResponse struct {
	Account accountResponse `json:"account"`
}

// accountNotFoundResponse はアカウント未存在時のレスポンス。
// 歴代クライアントが参照する空の "account" キーを維持しつつ、
// 統一エラーフォーマットの各フィールドも併せて返す。
type accountNotFoundResponse struct {
	Account  struct{} `json:"account"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Category string   `json:"category"`
	Action   string   `json:"action"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateAccount はアカウント作成を処理する。
// POST /accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if apiErr := checkContentType(r); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusUnsupportedMediaType, apiErr)
		return
	}

	req, apiErr := h.decodeAccountRequest(w, r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	account := toModelAccount(req)
	if err := h.service.Create(r.Context(), account); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", fmt.Sprintf("/accounts/%d", account.ID))
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toAccountResponse(account))
}

// ListAccounts はアカウント一覧を返す。
// GET /accounts
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context())
	if err != nil {
		handleReadError(w, err)
		return
	}

	// アカウントが0件でもJSON配列は `[]` として返す
	items := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, toAccountResponse(account))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listAccountsResponse{
		Accounts: items,
		Len:      len(items),
	})
}

// GetAccount はアカウント単体を返す。
// GET /accounts/{id}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := accountIDParam(r)

	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleReadError(w, err)
		return
	}

	if account == nil {
		writeAccountNotFound(w, id)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(readAccountResponse{Account: toAccountResponse(account)})
}

// UpdateAccount は既存アカウントを全フィールド置換する。
// PUT /accounts/{id}
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	if apiErr := checkContentType(r); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusUnsupportedMediaType, apiErr)
		return
	}

	req, apiErr := h.decodeAccountRequest(w, r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	id := accountIDParam(r)

	updated, err := h.service.Update(r.Context(), id, toModelAccount(req))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAccountResponse(updated))
}

// DeleteAccount はアカウントを削除する。
// DELETE /accounts/{id}
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := accountIDParam(r)

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetupAccountRoutes はアカウント管理関連のルーティングを設定したchi.Routerを返す。
// writeMiddleware が nil でない場合、書き込み系メソッドに専用レート制限を適用する。
func SetupAccountRoutes(service AccountServiceInterface, writeMiddleware func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	h := NewAccountHandler(service, 0)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		if writeMiddleware != nil {
			r.With(writeMiddleware).Post("/", h.CreateAccount)
		} else {
			r.Post("/", h.CreateAccount)
		}

		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.GetAccount)
			if writeMiddleware != nil {
				r.With(writeMiddleware).Put("/", h.UpdateAccount)
				r.With(writeMiddleware).Delete("/", h.DeleteAccount)
			} else {
				r.Put("/", h.UpdateAccount)
				r.Delete("/", h.DeleteAccount)
			}
		})
	})

	return r
}

// --- ヘルパー関数 ---

// accountIDParam はパスパラメータからアカウントIDを取り出す。
// ルート側の正規表現で数字列であることは保証済み。
// int64の桁あふれはMaxInt64に丸められ、存在しないIDとして解決される。
func accountIDParam(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

// checkContentType はContent-Typeがapplication/jsonであることを確認する。
// charset等のパラメータ付き指定も受け付ける。
func checkContentType(r *http.Request) *model.APIError {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return model.NewUnsupportedMediaTypeError(contentType)
	}
	return nil
}

// decodeAccountRequest はリクエストボディをサイズ制限付きでJSONとして読み取る。
func (h *AccountHandler) decodeAccountRequest(w http.ResponseWriter, r *http.Request) (*accountRequest, *model.APIError) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, model.NewMalformedBodyError(err.Error())
	}
	return &req, nil
}

// toModelAccount はリクエストボディからドメインモデルに変換する。
// IDはパスパラメータまたは採番で決まるため、ボディからは受け取らない。
func toModelAccount(req *accountRequest) *model.Account {
	return &model.Account{
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		DateJoined:  req.DateJoined,
	}
}

// toAccountResponse はドメインモデルからAPIレスポンスに変換する。
func toAccountResponse(account *model.Account) accountResponse {
	return accountResponse{
		ID:          account.ID,
		Name:        account.Name,
		Email:       account.Email,
		Address:     account.Address,
		PhoneNumber: account.PhoneNumber,
		DateJoined:  account.DateJoined,
	}
}

// writeAccountNotFound はアカウント未存在レスポンスを書き込む。
func writeAccountNotFound(w http.ResponseWriter, id int64) {
	apiErr := model.NewAccountNotFoundError(id)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(accountNotFoundResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleReadError は参照系エンドポイント（一覧・単体取得）のエラーを処理する。
// ストア障害は歴代クライアントとの互換のため400で返す。
func handleReadError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeStore {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	handleServiceError(w, err)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "Internal Server Error.",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case model.ErrCodeAccountNotFound:
		return http.StatusNotFound
	case model.ErrCodeStore:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
