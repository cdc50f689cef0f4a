package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ShiLuis/KapePOS/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	terminalIDKey
	cashierKey
)

const (
	HeaderRequestID  = "X-Request-ID"
	HeaderTerminalID = "X-Terminal-ID"
	HeaderCashier    = "X-Cashier"

	DefaultTerminalID = "default"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TerminalMiddleware reads the terminal and cashier headers. Requests without
// a terminal share the default cart.
func TerminalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		terminalID := r.Header.Get(HeaderTerminalID)
		if terminalID == "" {
			terminalID = DefaultTerminalID
		}

		ctx := context.WithValue(r.Context(), terminalIDKey, terminalID)
		if cashier := r.Header.Get(HeaderCashier); cashier != "" {
			ctx = context.WithValue(ctx, cashierKey, cashier)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccessLog writes one zerolog event per request.
func AccessLog(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			l := logger.WithTrace(r.Context(), base)
			ev := l.Info()
			if ww.Status() >= http.StatusInternalServerError {
				ev = l.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", getRequestID(r.Context())).
				Str("terminal_id", getTerminalID(r.Context())).
				Msg("request")
		})
	}
}

// RateLimiter keeps one token bucket per terminal.
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Middleware rejects requests over the terminal's budget with 429. It must
// run after TerminalMiddleware.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.get(getTerminalID(r.Context())).Allow() {
			w.Header().Set("Retry-After", "1")
			respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func getTerminalID(ctx context.Context) string {
	if id, ok := ctx.Value(terminalIDKey).(string); ok {
		return id
	}
	return DefaultTerminalID
}

func getCashier(ctx context.Context) string {
	if c, ok := ctx.Value(cashierKey).(string); ok {
		return c
	}
	return ""
}
