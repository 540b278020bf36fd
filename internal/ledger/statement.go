// internal/ledger/statement.go

package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Statement 為帳戶某一時間點的一致快照。
type Statement struct {
	AccountNumber string          `json:"account_number"`
	HolderName    string          `json:"holder_name"`
	Balance       decimal.Decimal `json:"balance"`
	Transactions  []Transaction   `json:"transactions"`
}

// Totals 分別加總存款與提款金額。
func (s Statement) Totals() (deposits, withdrawals decimal.Decimal) {
	deposits, withdrawals = decimal.Zero, decimal.Zero
	for _, tx := range s.Transactions {
		switch tx.Kind {
		case Deposit:
			deposits = deposits.Add(tx.Amount)
		case Withdrawal:
			withdrawals = withdrawals.Add(tx.Amount)
		}
	}
	return deposits, withdrawals
}

// Reconciles 檢查所有交易帶號金額的總和是否等於餘額（存款總額 − 提款總額 == 餘額）。
func (s Statement) Reconciles() bool {
	sum := decimal.Zero
	for _, tx := range s.Transactions {
		sum = sum.Add(tx.Signed())
	}
	return sum.Equal(s.Balance)
}

// String 輸出可供前端直接顯示的對帳單文字。
func (s Statement) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s - %s\n", s.AccountNumber, s.HolderName)
	fmt.Fprintf(&b, "Balance: %s\n", FormatAmount(s.Balance))
	b.WriteString("Transaction History:\n")
	for _, tx := range s.Transactions {
		fmt.Fprintf(&b, "- %s\n", tx)
	}
	return b.String()
}
