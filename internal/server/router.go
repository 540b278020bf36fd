// internal/server/router.go
//
// 路由註冊。所有端點同時掛在根路徑與 /api/v1 下。
package server

import (
	"net/http"

	"bankledger/internal/ledger"

	"github.com/gorilla/mux"
)

// Router 建立並回傳整個 HTTP 處理鏈。
func (s *Server) Router() http.Handler {
	root := mux.NewRouter()
	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	s.routes(root.PathPrefix("/api/v1").Subrouter())
	s.routes(root)

	// middleware 包在 root 外層而非 root.Use：mux 的 Use 只作用於已匹配的路由，
	// 404 / 405 也必須帶 request id、記錄日誌並受限流。
	var h http.Handler = root
	if s.limiter != nil {
		h = s.rateLimit(h)
	}
	return s.recoverer(s.requestLogger(h))
}

func (s *Server) routes(r *mux.Router) {
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	//   - GET  /accounts          → 列出帳戶
	//   - POST /accounts          → 建立帳戶
	r.HandleFunc("/accounts", s.listAccounts).Methods(http.MethodGet)
	r.HandleFunc("/accounts", s.createAccount).Methods(http.MethodPost)

	//   - GET  /accounts/{number}
	//   - POST /accounts/{number}/deposit
	//   - POST /accounts/{number}/withdraw
	//   - GET  /accounts/{number}/transactions
	//   - GET  /accounts/{number}/statement
	r.HandleFunc("/accounts/{number}", s.getAccount).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{number}/deposit", s.movement((*ledger.Account).Deposit)).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{number}/withdraw", s.movement((*ledger.Account).Withdraw)).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{number}/transactions", s.transactions).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{number}/statement", s.statement).Methods(http.MethodGet)
}
