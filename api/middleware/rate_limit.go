package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gsindri/kaupa-skil-sub004/api/responses"
	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
	"github.com/gsindri/kaupa-skil-sub004/pkg/redis"
)

// CounterStore is a fixed-window counter; pkg/redis provides one.
type CounterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RateLimitPolicy allows limit requests per client IP in each window.
type RateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int64
}

func NewRateLimitPolicy(name string, window time.Duration, limit int) RateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "api"
	}
	return RateLimitPolicy{name: name, window: window, limit: int64(limit)}
}

func (p RateLimitPolicy) active() bool { return p.window > 0 && p.limit > 0 }

func (p RateLimitPolicy) counterKey(ip string) string {
	return redis.RateLimitKey(p.name + ":" + ip)
}

// RateLimit rejects requests over the policy with 429 and Retry-After. When
// the store errors the request goes through.
func RateLimit(policy RateLimitPolicy, store CounterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || store == nil {
			return next
		}
		limit := strconv.FormatInt(policy.limit, 10)
		retryAfter := strconv.Itoa(int(policy.window.Seconds()))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			hits, err := store.IncrWithTTL(ctx, policy.counterKey(ip), policy.window)
			if err != nil {
				logg.Error(ctx, "rate_limit.store_failed", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(max(policy.limit-hits, 0), 10))
			if hits <= policy.limit {
				next.ServeHTTP(w, r)
				return
			}

			logg.Warn(logg.WithFields(ctx, map[string]any{
				"policy": policy.name,
				"ip":     ip,
				"hits":   hits,
				"limit":  policy.limit,
			}), "rate_limit.blocked")
			w.Header().Set("Retry-After", retryAfter)
			responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
		})
	}
}

// remoteIP reads RemoteAddr, which chi's RealIP middleware has already
// rewritten from forwarding headers.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
