package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"rainbowrise/internal/ratelimit"
)

// FreeLimitMessage is returned to anonymous clients over their AI allowance.
const FreeLimitMessage = "Free message limit reached. Please log in to continue chatting."

// AIRateLimit meters anonymous clients by IP under scope. Authenticated
// requests are not counted. Limiter errors are logged and the request is let through.
// X-Forwarded-For is only consulted when trustProxy is set.
func AIRateLimit(limiter ratelimit.Limiter, scope string, trustProxy bool, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			ip := clientIPForRateLimit(r, trustProxy)
			d, err := limiter.Allow(r.Context(), scope+":"+ip)
			if err != nil {
				logger.Warn().Err(err).Str("scope", scope).Str("ip", ip).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining()))
			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
				logger.Info().Str("scope", scope).Str("ip", ip).Int64("count", d.Count).Msg("free limit reached")
				writeJSONError(w, http.StatusTooManyRequests, FreeLimitMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request, trustProxy bool) string {
	if xf := r.Header.Get("X-Forwarded-For"); trustProxy && xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}

// ClientIP returns the address used to identify anonymous clients. Without
// trustProxy the peer address is used and forwarding headers are ignored.
func ClientIP(r *http.Request, trustProxy bool) string {
	return clientIPForRateLimit(r, trustProxy)
}
