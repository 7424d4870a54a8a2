package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
	"todoBot/internal/logger"

	"go.uber.org/zap"
)

// UserIDHeader - транспорт может передать id пользователя, тогда лимит считается на пользователя
const UserIDHeader = "X-User-ID"

type clientInfo struct {
	count   int
	resetAt time.Time
}

type limiter struct {
	mtx     sync.Mutex
	clients map[string]*clientInfo
	rpm     int
	window  time.Duration
	now     func() time.Time
}

// allow возвращает остаток запросов и момент сброса окна
func (l *limiter) allow(key string) (bool, int, time.Time) {
	now := l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	info, ok := l.clients[key]
	switch {
	case !ok:
		l.sweep(now)
		info = &clientInfo{count: 1, resetAt: now.Add(l.window)}
		l.clients[key] = info
	case now.After(info.resetAt):
		info.count = 1
		info.resetAt = now.Add(l.window)
	case info.count >= l.rpm:
		return false, 0, info.resetAt
	default:
		info.count++
	}
	return true, max(l.rpm-info.count, 0), info.resetAt
}

// sweep убирает клиентов с истёкшим окном
func (l *limiter) sweep(now time.Time) {
	for key, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, key)
		}
	}
}

func RateLimit(rpm int) func(http.Handler) http.Handler {
	return rateLimit(rpm, time.Now)
}

func rateLimit(rpm int, now func() time.Time) func(http.Handler) http.Handler {
	if rpm <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := &limiter{
		clients: make(map[string]*clientInfo),
		rpm:     rpm,
		window:  time.Minute,
		now:     now,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			ok, remaining, resetAt := l.allow(key)

			if !ok {
				logger.Warn("HTTP: Превышен лимит запросов",
					zap.String("client", key),
					zap.String("request_id", GetRequestID(r.Context())))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"error":       "rate_limit_exceeded",
					"message":     "Слишком много запросов. Попробуйте позже.",
					"retry_after": int(resetAt.Sub(l.now()).Seconds()),
					"request_id":  GetRequestID(r.Context()),
				})
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if user := r.Header.Get(UserIDHeader); user != "" {
		return "user:" + user
	}
	return "ip:" + getIp(r)
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
