// internal/ledger/transaction.go
//
// 定義交易紀錄 (Transaction)：一次成功變動餘額的不可變紀錄。

package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind 為交易種類。
type Kind int

const (
	Deposit Kind = iota + 1
	Withdrawal
)

func (k Kind) String() string {
	switch k {
	case Deposit:
		return "DEPOSIT"
	case Withdrawal:
		return "WITHDRAWAL"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText 讓 Kind 在 JSON 中以 "DEPOSIT" / "WITHDRAWAL" 字串呈現。
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Deposit, Withdrawal:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown transaction kind %d", int(k))
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "DEPOSIT":
		*k = Deposit
	case "WITHDRAWAL":
		*k = Withdrawal
	default:
		return fmt.Errorf("unknown transaction kind %q", b)
	}
	return nil
}

// Transaction 表示一筆已提交的餘額變動。
// 只由 Account 的 Deposit / Withdraw 在成功時建立；以值傳遞，
// 呼叫端拿到的是副本，修改副本不會影響帳戶內部紀錄。
type Transaction struct {
	Amount    decimal.Decimal `json:"amount"` // 恆為正數
	Kind      Kind            `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
}

// Signed 回傳帶正負號的金額：存款為正、提款為負。
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == Withdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}

// String 輸出單行文字，例如 "DEPOSIT: $100.00 on Mon, 02 Jan 2006 15:04:05 UTC"。
func (t Transaction) String() string {
	return fmt.Sprintf("%s: %s on %s", t.Kind, FormatAmount(t.Amount), t.Timestamp.Format(time.RFC1123))
}
