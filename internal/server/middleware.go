// internal/server/middleware.go
//
// 請求層級的 middleware：panic 復原、請求日誌（含 request id）與限流。
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

type contextKey string

const entryKey = contextKey("log_entry")

// statusRecorder 記錄 handler 寫出的狀態碼。
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogger 為每個請求產生 request id，寫入 X-Request-ID，
// 並把帶有欄位的 logrus.Entry 放進 context 供 handler 使用。
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		entry := s.log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), entryKey, entry)))

		entry.WithFields(logrus.Fields{
			"status":  rec.status,
			"latency": time.Since(start).String(),
		}).Info("Request completed")
	})
}

// entryFrom 取出請求層級的日誌 entry；未經 middleware 時退回預設 logger。
func entryFrom(r *http.Request) *logrus.Entry {
	if e, ok := r.Context().Value(entryKey).(*logrus.Entry); ok {
		return e
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// recoverer 攔截 handler panic，回傳 500 並記錄錯誤。
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.log.WithField("panic", v).WithField("path", r.URL.Path).Error("Handler panicked")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// NewRateLimiter 依格式化字串（例如 "100-M"）建立以記憶體為儲存的限流器。
// rate 為空字串時回傳 nil，代表停用。
func NewRateLimiter(rate string) (*limiter.Limiter, error) {
	if rate == "" {
		return nil, nil
	}
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), r), nil
}

// rateLimit 依用戶端 IP 限流，超過上限回傳 429。
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := s.limiter.GetIPKey(r)
		lc, err := s.limiter.Get(r.Context(), key)
		if err != nil {
			entryFrom(r).WithError(err).Error("Failed to get rate limit context")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		if lc.Reached {
			entryFrom(r).WithFields(logrus.Fields{"ip": key, "limit": lc.Limit}).Warn("Rate limit exceeded")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
