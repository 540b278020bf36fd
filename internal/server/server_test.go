// internal/server/server_test.go
//
// server 層的整合測試：以 httptest.Server 模擬完整 HTTP 流程，
// 驗證路由、請求驗證、領域錯誤到狀態碼的映射、request id 與限流。
package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bankledger/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestServer(t *testing.T, rate string) (*httptest.Server, *ledger.Ledger) {
	t.Helper()
	lim, err := NewRateLimiter(rate)
	require.NoError(t, err)
	l := ledger.NewLedger()
	ts := httptest.NewServer(NewServer(l, quietLogger(), lim).Router())
	t.Cleanup(ts.Close)
	return ts, l
}

// doJSON 送出 JSON 請求並驗證狀態碼；out 非 nil 時解析回應。
func doJSON(t *testing.T, c *http.Client, method, url string, body any, wantCode int, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantCode, resp.StatusCode, "%s %s", method, url)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func amt(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

type errorBody struct {
	Error string `json:"error"`
}

// TestHTTPFlow 完整流程：開戶、存款、提款、餘額不足、查詢餘額、交易紀錄與帳戶列表。
func TestHTTPFlow(t *testing.T) {
	ts, l := newTestServer(t, "")
	cli := ts.Client()

	var a, b accountView
	doJSON(t, cli, "POST", ts.URL+"/accounts", map[string]any{"holder_name": "A"}, 201, &a)
	doJSON(t, cli, "POST", ts.URL+"/api/v1/accounts", map[string]any{"holder_name": "B"}, 201, &b)
	assert.Equal(t, "ACC1001", a.AccountNumber)
	assert.Equal(t, "ACC1002", b.AccountNumber)
	assert.True(t, a.Balance.IsZero())

	var mv movementResponse
	doJSON(t, cli, "POST", ts.URL+"/accounts/"+a.AccountNumber+"/deposit", map[string]any{"amount": "1000.00"}, 200, &mv)
	assert.Equal(t, ledger.Deposit, mv.Transaction.Kind)
	assert.True(t, mv.Account.Balance.Equal(decimal.NewFromInt(1000)))

	doJSON(t, cli, "POST", ts.URL+"/accounts/"+a.AccountNumber+"/withdraw", map[string]any{"amount": 500}, 200, &mv)
	assert.Equal(t, ledger.Withdrawal, mv.Transaction.Kind)
	doJSON(t, cli, "POST", ts.URL+"/accounts/"+a.AccountNumber+"/deposit", map[string]any{"amount": "100.00"}, 200, nil)

	var eb errorBody
	doJSON(t, cli, "POST", ts.URL+"/accounts/"+a.AccountNumber+"/withdraw", map[string]any{"amount": "2000.00"}, 409, &eb)
	assert.Contains(t, eb.Error, "insufficient funds")

	var got accountView
	doJSON(t, cli, "GET", ts.URL+"/accounts/"+a.AccountNumber, nil, 200, &got)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(600)), "balance=%s", got.Balance)

	var txs []ledger.Transaction
	doJSON(t, cli, "GET", ts.URL+"/api/v1/accounts/"+a.AccountNumber+"/transactions", nil, 200, &txs)
	require.Len(t, txs, 3)
	assert.Equal(t, ledger.Deposit, txs[0].Kind)
	assert.Equal(t, ledger.Withdrawal, txs[1].Kind)
	assert.Equal(t, ledger.Deposit, txs[2].Kind)

	var list []accountView
	doJSON(t, cli, "GET", ts.URL+"/accounts", nil, 200, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].HolderName)
	assert.Equal(t, "B", list[1].HolderName)

	acc, ok := l.FindAccount(a.AccountNumber)
	require.True(t, ok)
	assert.True(t, acc.Statement().Reconciles())
}

// TestStatementEndpoint 對帳單端點回傳純文字，內容與 Statement().String() 相同。
func TestStatementEndpoint(t *testing.T) {
	ts, l := newTestServer(t, "")
	a := l.CreateAccount("John Doe")
	_, err := a.Deposit(decimal.NewFromInt(250))
	require.NoError(t, err)

	resp, err := ts.Client().Get(ts.URL + "/accounts/" + a.Number() + "/statement")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	assert.Equal(t, a.Statement().String(), string(body))
	assert.Contains(t, string(body), "Balance: $250.00")
}

// TestErrorMapping 領域錯誤、驗證失敗、未知路徑與錯誤方法對應的狀態碼，且失敗請求不改變帳戶。
func TestErrorMapping(t *testing.T) {
	ts, l := newTestServer(t, "")
	cli := ts.Client()
	a := l.CreateAccount("A")
	base := ts.URL + "/accounts/" + a.Number()

	tests := []struct {
		name   string
		method string
		url    string
		body   any
		code   int
	}{
		{name: "unknown account", method: "GET", url: ts.URL + "/accounts/NONEXISTENT", code: 404},
		{name: "deposit unknown account", method: "POST", url: ts.URL + "/accounts/NONEXISTENT/deposit", body: map[string]any{"amount": "1"}, code: 404},
		{name: "zero deposit", method: "POST", url: base + "/deposit", body: map[string]any{"amount": "0"}, code: 400},
		{name: "negative withdraw", method: "POST", url: base + "/withdraw", body: map[string]any{"amount": "-5"}, code: 400},
		{name: "missing amount", method: "POST", url: base + "/deposit", body: map[string]any{}, code: 400},
		{name: "unparseable amount", method: "POST", url: base + "/deposit", body: map[string]any{"amount": "ten"}, code: 400},
		{name: "too many decimal places", method: "POST", url: base + "/deposit", body: map[string]any{"amount": "1.005"}, code: 400},
		{name: "huge negative exponent", method: "POST", url: base + "/deposit", body: map[string]any{"amount": "1e-5000000"}, code: 400},
		{name: "huge positive exponent", method: "POST", url: base + "/deposit", body: map[string]any{"amount": "1e900000000"}, code: 400},
		{name: "huge exponent as number", method: "POST", url: base + "/withdraw", body: json.RawMessage(`{"amount":1e900000000}`), code: 400},
		{name: "too many integer digits", method: "POST", url: base + "/deposit", body: map[string]any{"amount": "1000000000000000"}, code: 400},
		{name: "null amount", method: "POST", url: base + "/deposit", body: json.RawMessage(`{"amount":null}`), code: 400},
		{name: "missing holder", method: "POST", url: ts.URL + "/accounts", body: map[string]any{}, code: 400},
		{name: "holder too long", method: "POST", url: ts.URL + "/accounts", body: map[string]any{"holder_name": strings.Repeat("x", 129)}, code: 400},
		{name: "insufficient funds", method: "POST", url: base + "/withdraw", body: map[string]any{"amount": "0.01"}, code: 409},
		{name: "wrong method", method: "GET", url: base + "/deposit", code: 405},
		{name: "unknown path", method: "GET", url: ts.URL + "/transfer", code: 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var eb errorBody
			doJSON(t, cli, tt.method, tt.url, tt.body, tt.code, &eb)
			assert.NotEmpty(t, eb.Error)
		})
	}

	assert.True(t, a.Balance().IsZero())
	assert.Empty(t, a.Transactions())
	assert.Equal(t, 1, l.Len())
}

// TestBadJSON 格式錯誤的 JSON 回傳 400。
func TestBadJSON(t *testing.T) {
	ts, l := newTestServer(t, "")
	a := l.CreateAccount("A")

	resp, err := ts.Client().Post(ts.URL+"/accounts/"+a.Number()+"/deposit", "application/json", bytes.NewBufferString("{bad json}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}

// TestAmountFormats 金額可為字串、數字或帶 $ 的字串；最大允許 15 位整數、2 位小數。
func TestAmountFormats(t *testing.T) {
	ts, l := newTestServer(t, "")
	a := l.CreateAccount("A")
	url := ts.URL + "/accounts/" + a.Number() + "/deposit"

	for _, amount := range []any{"$100.00", " 0.01 ", 2.5, "999999999999999.99"} {
		doJSON(t, ts.Client(), "POST", url, map[string]any{"amount": amount}, 200, nil)
	}

	want := amt(t, "1000000000000102.50")
	assert.True(t, a.Balance().Equal(want), "balance=%s", a.Balance())
	assert.Len(t, a.Transactions(), 4)
}

// TestOversizedBody 超過主體上限的請求回傳 400，即使 JSON 本身合法。
func TestOversizedBody(t *testing.T) {
	ts, l := newTestServer(t, "")
	a := l.CreateAccount("A")

	body := map[string]any{"amount": "1", "memo": strings.Repeat("x", maxBodyBytes)}
	var eb errorBody
	doJSON(t, ts.Client(), "POST", ts.URL+"/accounts/"+a.Number()+"/deposit", body, 400, &eb)
	assert.Contains(t, eb.Error, "too large")
	assert.True(t, a.Balance().IsZero())
}

// TestFallbacksUseMiddleware 404 與 405 同樣帶 X-Request-ID 並計入限流。
func TestFallbacksUseMiddleware(t *testing.T) {
	ts, _ := newTestServer(t, "2-M")
	cli := ts.Client()

	r1 := doJSON(t, cli, "GET", ts.URL+"/transfer", nil, 404, nil)
	r2 := doJSON(t, cli, "DELETE", ts.URL+"/accounts", nil, 405, nil)
	assert.NotEmpty(t, r1.Header.Get("X-Request-ID"))
	assert.NotEmpty(t, r2.Header.Get("X-Request-ID"))

	var eb errorBody
	doJSON(t, cli, "GET", ts.URL+"/transfer", nil, 429, &eb)
	assert.Equal(t, "too many requests", eb.Error)
}

// TestRequestIDHeader 每個回應帶有不同的 X-Request-ID。
func TestRequestIDHeader(t *testing.T) {
	ts, _ := newTestServer(t, "")

	r1 := doJSON(t, ts.Client(), "GET", ts.URL+"/health", nil, 200, nil)
	r2 := doJSON(t, ts.Client(), "GET", ts.URL+"/api/v1/health", nil, 200, nil)
	assert.NotEmpty(t, r1.Header.Get("X-Request-ID"))
	assert.NotEqual(t, r1.Header.Get("X-Request-ID"), r2.Header.Get("X-Request-ID"))
}

// TestRateLimit 超過限流額度回傳 429。
func TestRateLimit(t *testing.T) {
	ts, _ := newTestServer(t, "2-M")
	cli := ts.Client()

	doJSON(t, cli, "GET", ts.URL+"/health", nil, 200, nil)
	doJSON(t, cli, "GET", ts.URL+"/health", nil, 200, nil)
	var eb errorBody
	doJSON(t, cli, "GET", ts.URL+"/health", nil, 429, &eb)
	assert.Equal(t, "too many requests", eb.Error)
}

// TestNewRateLimiter 空字串停用限流，格式錯誤回傳錯誤。
func TestNewRateLimiter(t *testing.T) {
	lim, err := NewRateLimiter("")
	require.NoError(t, err)
	assert.Nil(t, lim)

	_, err = NewRateLimiter("lots")
	assert.Error(t, err)
}

// TestStatusFor 錯誤到 HTTP 狀態碼的映射。
func TestStatusFor(t *testing.T) {
	assert.Equal(t, 400, statusFor(ledger.ErrInvalidAmount))
	assert.Equal(t, 404, statusFor(ledger.ErrAccountNotFound))
	assert.Equal(t, 409, statusFor(ledger.ErrInsufficientFunds))
	assert.Equal(t, 500, statusFor(io.ErrUnexpectedEOF))
}
