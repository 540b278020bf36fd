// internal/ledger/money.go
//
// 金額一律以 decimal.Decimal 表示，所有比較與加減都在精確的十進位表示上進行，
// 只有在輸出顯示時才格式化為兩位小數。

package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount 將金額格式化為顯示字串，例如 "$100.00"。
func FormatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// ParseAmount 解析操作者輸入的金額文字，允許前後空白與前置 "$"。
// 無法解析時回傳包裝 ErrInvalidAmount 的錯誤；正負檢查由 Deposit / Withdraw 負責。
func ParseAmount(s string) (decimal.Decimal, error) {
	t := strings.TrimPrefix(strings.TrimSpace(s), "$")
	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: cannot parse %q", ErrInvalidAmount, s)
	}
	return d, nil
}
