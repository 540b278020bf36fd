// internal/server/handler.go
//
// Package server 提供 HTTP/JSON 介面，作為 ledger 核心的傳輸層。
// 每個 handler 只負責：
//  1. 解析與驗證請求
//  2. 呼叫 Ledger / Account 的公開操作
//  3. 將結果或領域錯誤轉為標準 JSON 回應
//
// 帳本核心不依賴 HTTP，也不記錄日誌；日誌由本層的 middleware 負責。
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"bankledger/internal/ledger"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
)

// Server 為 HTTP 層核心結構。
//   - Ledger：注入的帳本核心。
//   - limiter：可為 nil，nil 時不限流。
type Server struct {
	Ledger   *ledger.Ledger
	log      *logrus.Logger
	limiter  *limiter.Limiter
	validate *validator.Validate
}

// NewServer 建立 HTTP 伺服器。log 為 nil 時使用 logrus 預設 logger。
func NewServer(l *ledger.Ledger, log *logrus.Logger, lim *limiter.Limiter) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{Ledger: l, log: log, limiter: lim, validate: validator.New()}
}

type createAccountRequest struct {
	HolderName string `json:"holder_name" validate:"required,max=128"`
}

const (
	// maxBodyBytes 為請求主體上限。
	maxBodyBytes = 64 << 10
	// maxAmountScale 為金額最多允許的小數位數（最小貨幣單位為分）。
	maxAmountScale = 2
	// maxAmountIntDigits 為金額整數部分最多允許的位數。
	maxAmountIntDigits = 15
)

// amountRequest 的 amount 可為 JSON 字串（建議，例如 "100.00" 或 "$100.00"）或數字。
type amountRequest struct {
	Amount json.RawMessage `json:"amount" validate:"required"`
}

// amount 解析並檢查金額的精度與量級。
// 只看 Exponent 與位數，不做任何 rescale，避免 "1e-5000000" 之類的輸入在比較時就耗盡資源。
func (req amountRequest) amount() (decimal.Decimal, error) {
	raw := strings.TrimSpace(string(req.Amount))
	if raw == "null" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", errBadRequest)
	}
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(req.Amount, &text); err != nil {
			return decimal.Zero, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		raw = text
	}
	d, err := ledger.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.Exponent() < -maxAmountScale {
		return decimal.Zero, fmt.Errorf("%w: amount %q has more than %d decimal places", errBadRequest, raw, maxAmountScale)
	}
	if int64(d.NumDigits())+int64(d.Exponent()) > maxAmountIntDigits {
		return decimal.Zero, fmt.Errorf("%w: amount %q exceeds %d integer digits", errBadRequest, raw, maxAmountIntDigits)
	}
	return d, nil
}

type accountView struct {
	AccountNumber string          `json:"account_number"`
	HolderName    string          `json:"holder_name"`
	Balance       decimal.Decimal `json:"balance"`
}

type movementResponse struct {
	Account     accountView        `json:"account"`
	Transaction ledger.Transaction `json:"transaction"`
}

func viewOf(a *ledger.Account) accountView {
	return accountView{AccountNumber: a.Number(), HolderName: a.Holder(), Balance: a.Balance()}
}

// decode 解析 JSON（主體上限 maxBodyBytes）並執行 validator 驗證；任何失敗都視為 400。
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// account 依路徑中的 {number} 取得帳戶；查無時回傳 ledger.ErrAccountNotFound。
func (s *Server) account(r *http.Request) (*ledger.Account, error) {
	number := mux.Vars(r)["number"]
	a, ok := s.Ledger.FindAccount(number)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, number)
	}
	return a, nil
}

// createAccount 處理 POST /accounts。
func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := s.decode(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	a := s.Ledger.CreateAccount(req.HolderName)
	entryFrom(r).WithField("account", a.Number()).Info("Account created")
	writeJSON(w, http.StatusCreated, viewOf(a))
}

// listAccounts 處理 GET /accounts，依建立順序列出。
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	all := s.Ledger.ListAccounts()
	out := make([]accountView, 0, len(all))
	for _, a := range all {
		out = append(out, viewOf(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// getAccount 處理 GET /accounts/{number}。
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.account(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(a))
}

// movement 共用存款與提款流程，op 為 (*ledger.Account).Deposit 或 Withdraw。
func (s *Server) movement(op func(*ledger.Account, decimal.Decimal) (ledger.Transaction, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := s.account(r)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		var req amountRequest
		if err := s.decode(w, r, &req); err != nil {
			writeErr(w, r, err)
			return
		}
		amount, err := req.amount()
		if err != nil {
			writeErr(w, r, err)
			return
		}
		tx, err := op(a, amount)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		entryFrom(r).WithFields(logrus.Fields{
			"account": a.Number(),
			"kind":    tx.Kind.String(),
			"amount":  tx.Amount.String(),
		}).Info("Transaction committed")
		writeJSON(w, http.StatusOK, movementResponse{Account: viewOf(a), Transaction: tx})
	}
}

// transactions 處理 GET /accounts/{number}/transactions。
func (s *Server) transactions(w http.ResponseWriter, r *http.Request) {
	a, err := s.account(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.Transactions())
}

// statement 處理 GET /accounts/{number}/statement，回傳純文字對帳單。
func (s *Server) statement(w http.ResponseWriter, r *http.Request) {
	a, err := s.account(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(a.Statement().String()))
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
