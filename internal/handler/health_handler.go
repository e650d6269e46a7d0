package handler

import (
	"encoding/json"
	"net/http"
)

const (
	serviceName    = "Account REST API Service"
	serviceVersion = "1.0"
)

// HealthHandler は死活確認とサービス情報のHTTPハンドラー。
type HealthHandler struct{}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status string `json:"status"`
}

// indexResponse はサービス情報のレスポンス。
type indexResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Health はヘルスチェックに応答する。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{Status: "OK"})
}

// Index はサービス名とバージョンを返す。
// GET /
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(indexResponse{
		Name:    serviceName,
		Version: serviceVersion,
	})
}
