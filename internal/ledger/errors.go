// internal/ledger/errors.go
//
// 本檔集中定義帳本核心的領域錯誤（domain errors）。
// 核心層不記錄日誌也不重試；錯誤同步回傳給呼叫端，由前端或 HTTP 層決定如何呈現。

package ledger

import "errors"

var (
	// ErrInvalidAmount 代表金額非正數（0 或負數），或無法解析為金額。
	// 屬於呼叫端輸入錯誤，修正輸入前重試沒有意義。對應 HTTP 400。
	ErrInvalidAmount = errors.New("amount must be > 0")

	// ErrInsufficientFunds 代表提款金額超過目前餘額。
	// 失敗時帳戶餘額與交易紀錄完全不變。對應 HTTP 409。
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound 代表查無此帳號。
	// Ledger.FindAccount 以 (nil, false) 表示查無結果；此錯誤供上層轉換使用。對應 HTTP 404。
	ErrAccountNotFound = errors.New("account not found")
)
