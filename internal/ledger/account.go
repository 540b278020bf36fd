// internal/ledger/account.go

// Package ledger 定義帳本核心：帳戶 (Account)、交易紀錄 (Transaction) 與帳戶登錄表 (Ledger)。
// 不含任何 HTTP、日誌或儲存細節。
//
// 每個帳戶各自持有一把 sync.RWMutex：
//   - Deposit / Withdraw 在寫鎖內完成「檢查 → 更新餘額 → 追加紀錄」，三者一起生效或完全不生效。
//   - Balance / Transactions / Statement 在讀鎖內讀取，不會看到更新到一半的狀態。
//
// 不同帳戶之間不需要協調，沒有跨帳戶的原子操作。
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Account 為單一持有人的帳戶。
// number 與 holder 建立後不可變；balance 與 log 只能透過 Deposit / Withdraw 修改。
type Account struct {
	number string
	holder string
	clock  func() time.Time

	mu      sync.RWMutex
	balance decimal.Decimal
	log     []Transaction
}

func newAccount(number, holder string, clock func() time.Time) *Account {
	if clock == nil {
		clock = time.Now
	}
	return &Account{number: number, holder: holder, clock: clock, balance: decimal.Zero}
}

// Number 回傳帳號。
func (a *Account) Number() string { return a.number }

// Holder 回傳持有人名稱。
func (a *Account) Holder() string { return a.holder }

// Deposit 存款：金額需 > 0，否則回傳 ErrInvalidAmount 且狀態不變。
// 成功時回傳新追加的交易紀錄。
func (a *Account) Deposit(amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: deposit %s", ErrInvalidAmount, amount)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	tx := a.appendLocked(Deposit, amount)
	a.balance = a.balance.Add(amount)
	return tx, nil
}

// Withdraw 提款：金額需 > 0 且不得超過餘額。
// 餘額檢查與扣款在同一個臨界區內，兩筆並發提款不會同時通過舊餘額的檢查。
// 餘額不足時回傳 ErrInsufficientFunds，餘額與交易紀錄完全不變（不做截斷）。
func (a *Account) Withdraw(amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: withdraw %s", ErrInvalidAmount, amount)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount.GreaterThan(a.balance) {
		return Transaction{}, fmt.Errorf("%w: withdraw %s exceeds balance %s",
			ErrInsufficientFunds, amount, a.balance)
	}
	tx := a.appendLocked(Withdrawal, amount)
	a.balance = a.balance.Sub(amount)
	return tx, nil
}

// appendLocked 追加一筆紀錄，呼叫端必須持有寫鎖。
// 時鐘若倒退，沿用上一筆的時間，確保同一帳戶內時間戳非遞減。
func (a *Account) appendLocked(kind Kind, amount decimal.Decimal) Transaction {
	now := a.clock()
	if n := len(a.log); n > 0 && now.Before(a.log[n-1].Timestamp) {
		now = a.log[n-1].Timestamp
	}
	tx := Transaction{Amount: amount, Kind: kind, Timestamp: now}
	a.log = append(a.log, tx)
	return tx
}

// Balance 回傳目前餘額。
func (a *Account) Balance() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance
}

// Transactions 回傳交易紀錄的副本（依時間先後），避免外部修改內部切片。
func (a *Account) Transactions() []Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Transaction, len(a.log))
	copy(out, a.log)
	return out
}

// Statement 在同一個讀鎖內擷取餘額與交易紀錄，兩者保證對應同一時間點。
func (a *Account) Statement() Statement {
	a.mu.RLock()
	defer a.mu.RUnlock()
	txs := make([]Transaction, len(a.log))
	copy(txs, a.log)
	return Statement{
		AccountNumber: a.number,
		HolderName:    a.holder,
		Balance:       a.balance,
		Transactions:  txs,
	}
}
