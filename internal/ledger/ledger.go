// internal/ledger/ledger.go

package ledger

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultNumberPrefix 與 DefaultFirstNumber 產生 ACC1001、ACC1002 …
	DefaultNumberPrefix       = "ACC"
	DefaultFirstNumber  int64 = 1001
)

// Option 調整 Ledger 的建立參數。
type Option func(*Ledger)

// WithClock 指定交易時間戳的來源（測試時可注入固定時鐘）。
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithNumberPrefix 指定帳號前綴。
func WithNumberPrefix(prefix string) Option {
	return func(l *Ledger) { l.prefix = prefix }
}

// WithFirstNumber 指定第一個帳戶的序號。
func WithFirstNumber(n int64) Option {
	return func(l *Ledger) { l.first = n }
}

// Ledger 為帳戶登錄表：負責帳號配發、建立與查詢，從不碰觸餘額。
//   - seq：專用的遞增計數器，與帳戶數量脫鉤；即使日後加入刪除功能，帳號也不會重複使用。
//   - mu：序列化 CreateAccount，確保第 N 個建立的帳戶拿到第 N 個帳號；
//     只保護 accounts / order，不會阻擋既有帳戶上的存提款。
type Ledger struct {
	prefix string
	first  int64
	clock  func() time.Time
	seq    atomic.Int64

	mu       sync.RWMutex
	accounts map[string]*Account
	order    []*Account
}

// NewLedger 建立空白帳本。
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		prefix:   DefaultNumberPrefix,
		first:    DefaultFirstNumber,
		clock:    time.Now,
		accounts: make(map[string]*Account),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// nextNumber 以原子遞增配發下一個帳號。
func (l *Ledger) nextNumber() string {
	n := l.seq.Add(1) - 1
	return fmt.Sprintf("%s%d", l.prefix, l.first+n)
}

// CreateAccount 以持有人名稱建立餘額為 0、紀錄為空的帳戶，註冊後回傳。
// 回傳的是帳戶本身（非副本），呼叫端直接在其上存提款。
func (l *Ledger) CreateAccount(holder string) *Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := newAccount(l.nextNumber(), holder, l.clock)
	l.accounts[a.number] = a
	l.order = append(l.order, a)
	return a
}

// FindAccount 依帳號查詢；查無時回傳 (nil, false)。查無是正常結果，不是錯誤。
func (l *Ledger) FindAccount(number string) (*Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.accounts[number]
	return a, ok
}

// ListAccounts 依建立順序回傳所有帳戶；回傳的切片為新配置，修改它不影響登錄表。
func (l *Ledger) ListAccounts() []*Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Account, len(l.order))
	copy(out, l.order)
	return out
}

// Len 回傳已註冊的帳戶數。
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}
