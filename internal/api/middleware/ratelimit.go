package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/sidesales/sidesales-backend/internal/api/response"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/logger"
)

// RateLimiter keeps one token bucket per client IP. Buckets of clients that
// stay quiet expire from the cache.
type RateLimiter struct {
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per client IP, with bursts of the same size.
// Values below one are treated as one.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		limiters: cache.New(10*time.Minute, 20*time.Minute),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

// Allow reports whether the client at ip may make another request now.
func (l *RateLimiter) Allow(ip string) bool {
	if v, ok := l.limiters.Get(ip); ok {
		limiter := v.(*rate.Limiter)
		l.limiters.SetDefault(ip, limiter)
		return limiter.Allow()
	}

	limiter := rate.NewLimiter(l.limit, l.burst)
	// Another request from the same IP may have raced us here; keep whichever won.
	if err := l.limiters.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		if v, ok := l.limiters.Get(ip); ok {
			limiter = v.(*rate.Limiter)
		}
	}
	return limiter.Allow()
}

// Handler returns 429 Too Many Requests once a client exceeds its budget.
// It relies on chi's RealIP middleware having set RemoteAddr.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			logger.L.Warn("rate limit exceeded", "ip", sanitize(ip), "path", sanitize(r.URL.Path))
			w.Header().Set("Retry-After", "60")
			response.RespondError(w, http.StatusTooManyRequests, apperrors.ErrRateLimited.Error(), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
