package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// httpMetricRecord は記録されたHTTPメトリクスの1件分。
type httpMetricRecord struct {
	method     string
	path       string
	statusCode int
}

// mockHTTPMetricsRecorder はHTTPMetricsRecorderのテスト用実装。
type mockHTTPMetricsRecorder struct {
	mu      sync.Mutex
	records []httpMetricRecord
}

func (m *mockHTTPMetricsRecorder) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, httpMetricRecord{
		method:     method,
		path:       path,
		statusCode: statusCode,
	})
}

// TestRouterIntegration_MetricsMiddleware_RecordsRoutePattern は
// メトリクスのパスラベルに実URLではなくchiのルートパターンが使われることを検証する。
func TestRouterIntegration_MetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	recorder := &mockHTTPMetricsRecorder{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(recorder))
	r.Get("/accounts/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/42", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if len(recorder.records) != 1 {
		t.Fatalf("records = %d, want 1", len(recorder.records))
	}

	rec := recorder.records[0]
	if rec.method != http.MethodGet {
		t.Errorf("method = %q, want %q", rec.method, http.MethodGet)
	}
	if rec.path != "/accounts/{id:[0-9]+}" {
		t.Errorf("path = %q, want route pattern %q", rec.path, "/accounts/{id:[0-9]+}")
	}
	if rec.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want %d", rec.statusCode, http.StatusOK)
	}
}

// TestRouterIntegration_MetricsMiddleware_RecordsErrorStatus は
// エラーレスポンスのステータスコードが記録されることを検証する。
func TestRouterIntegration_MetricsMiddleware_RecordsErrorStatus(t *testing.T) {
	recorder := &mockHTTPMetricsRecorder{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(recorder))
	r.Post("/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if len(recorder.records) != 1 {
		t.Fatalf("records = %d, want 1", len(recorder.records))
	}
	if recorder.records[0].statusCode != http.StatusBadRequest {
		t.Errorf("statusCode = %d, want %d", recorder.records[0].statusCode, http.StatusBadRequest)
	}
}

// TestMetricsMiddleware_WithoutRouteContext は
// chi外で使われた場合に実URLパスへフォールバックすることを検証する。
func TestMetricsMiddleware_WithoutRouteContext(t *testing.T) {
	recorder := &mockHTTPMetricsRecorder{}

	handler := NewMetricsMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if len(recorder.records) != 1 {
		t.Fatalf("records = %d, want 1", len(recorder.records))
	}
	if recorder.records[0].path != "/health" {
		t.Errorf("path = %q, want %q", recorder.records[0].path, "/health")
	}
}

// TestRouterIntegration_RateLimitGroups は
// 書き込み系レート制限がルートグループ単位で適用されることを検証する。
func TestRouterIntegration_RateLimitGroups(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     100, // 一般制限には引っかからない
		GeneralBurst:    200,
		WriteRate:       1,
		WriteBurst:      1, // 書き込みは1回でバースト消費
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	r := chi.NewRouter()
	r.Use(rl.GeneralMiddleware())

	r.Get("/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(rl.WriteMiddleware())
		r.Post("/accounts", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
	})

	const clientAddr = "198.51.100.50:12345"

	// POSTの1回目は通る
	req1 := httptest.NewRequest(http.MethodPost, "/accounts", nil)
	req1.RemoteAddr = clientAddr
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, req1)

	if w1.Result().StatusCode != http.StatusCreated {
		t.Errorf("first POST: status = %d, want %d", w1.Result().StatusCode, http.StatusCreated)
	}

	// POSTの2回目は書き込み制限で429
	req2 := httptest.NewRequest(http.MethodPost, "/accounts", nil)
	req2.RemoteAddr = clientAddr
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("second POST: status = %d, want %d", w2.Result().StatusCode, http.StatusTooManyRequests)
	}

	// GETは書き込み制限の影響を受けない
	req3 := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req3.RemoteAddr = clientAddr
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, req3)

	if w3.Result().StatusCode != http.StatusOK {
		t.Errorf("GET after write limit: status = %d, want %d", w3.Result().StatusCode, http.StatusOK)
	}
}
