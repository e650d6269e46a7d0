package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/accountd/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	MetricsRecorder   middleware.HTTPMetricsRecorder
	MetricsHandler    http.Handler

	// アカウント
	AccountService AccountServiceInterface
	MaxBodyBytes   int64
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → SecurityHeaders → CORS → Metrics
//
// レート制限は /accounts 以下にのみ適用し、死活確認系（/、/health、/metrics）は
// 制限の対象外とする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	healthHandler := NewHealthHandler()
	accountHandler := NewAccountHandler(deps.AccountService, deps.MaxBodyBytes)

	// --- 死活確認・情報系ルート ---

	r.Get("/", healthHandler.Index)
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- アカウント管理ルート ---
	// ミドルウェアスタック: RateLimit(General)、書き込み系はさらにRateLimit(Write)
	r.Group(func(r chi.Router) {
		writeLimit := func(next http.Handler) http.Handler { return next }
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
			writeLimit = deps.RateLimiter.WriteMiddleware()
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountHandler.ListAccounts)
			r.With(writeLimit).Post("/", accountHandler.CreateAccount)

			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.Get("/", accountHandler.GetAccount)
				r.With(writeLimit).Put("/", accountHandler.UpdateAccount)
				r.With(writeLimit).Delete("/", accountHandler.DeleteAccount)
			})
		})
	})

	return r
}
