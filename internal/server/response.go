// internal/server/response.go
//
// 統一 HTTP 回應格式：成功以 JSON 輸出，錯誤以 {"error": "..."} 輸出，
// 並集中維護領域錯誤到 HTTP 狀態碼的對應。
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"bankledger/internal/ledger"
)

// errBadRequest 代表請求格式錯誤或未通過驗證。
var errBadRequest = errors.New("bad request")

// writeJSON 統一輸出成功回應。
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor 將錯誤映射為 HTTP 狀態碼。
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeErr 統一輸出錯誤回應，並依嚴重程度記錄日誌。
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	entry := entryFrom(r).WithError(err).WithField("status", code)
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request rejected")
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
