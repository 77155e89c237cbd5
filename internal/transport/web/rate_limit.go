package web

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = 5 * time.Minute
)

// RateLimiter manages rate limiters for visitors based on their IP address or user ID.
type RateLimiter struct {
	visitors map[string]*Visitor // keyed by IP hash or "user_<id>"
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// Visitor represents a single visitor (e.g., an IP address or user) and their associated rate limiter.
type Visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter whose inactive visitors are dropped
// periodically until ctx is cancelled.
func NewRateLimiter(ctx context.Context, rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*Visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
	go rl.cleanupVisitors(ctx)
	return rl
}

// getVisitor retrieves or creates the limiter of key / Récupère ou crée le limiteur d'une clé
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		v = &Visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// sweep removes visitors idle for longer than ttl.
func (rl *RateLimiter) sweep(ttl time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, v := range rl.visitors {
		if time.Since(v.lastSeen) > ttl {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(visitorTTL)
		case <-ctx.Done():
			return
		}
	}
}

// allow consumes a token for key. When refused it returns the wait before
// the next token, rounded up to the second.
func (rl *RateLimiter) allow(key string) (remaining int, retryAfter int, ok bool) {
	limiter := rl.getVisitor(key)
	now := time.Now()
	res := limiter.ReserveN(now, 1)
	if !res.OK() {
		return 0, 60, false
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return 0, int(math.Ceil(delay.Seconds())), false
	}
	return int(limiter.TokensAt(now)), 0, true
}

// getIPWithTrustedProxies extracts the client IP with trusted proxy validation.
// Proxy headers are only honoured when RemoteAddr matches a trusted entry,
// given as a single IP or a CIDR range.
func getIPWithTrustedProxies(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// Might be just an IP without port
		remoteIP = r.RemoteAddr
	}

	if !isTrustedProxy(remoteIP, trustedProxies) {
		return remoteIP
	}

	// X-Forwarded-For is "client, proxy1, proxy2": the first entry is the client.
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		clientIP := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if net.ParseIP(clientIP) != nil {
			return clientIP
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		if net.ParseIP(realIP) != nil {
			return realIP
		}
	}

	return remoteIP
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, trusted := range trustedProxies {
		if strings.Contains(trusted, "/") {
			if prefix, err := netip.ParsePrefix(trusted); err == nil && prefix.Contains(addr) {
				return true
			}
			continue
		}
		if t, err := netip.ParseAddr(trusted); err == nil && t == addr {
			return true
		}
	}
	return false
}

// hashIP keeps raw IP addresses out of limiter keys and the audit log.
func hashIP(ip string) string {
	return sha256hex(ip)
}

// limit applies limiter to the request keyed by key. label names the limiter in metrics.
func (mw *Middleware) limit(w http.ResponseWriter, limiter *RateLimiter, key, label string) bool {
	remaining, retryAfter, ok := limiter.allow(key)
	addRateLimitHeaders(w, limiter.burst, remaining)
	if !ok {
		mw.metrics.RecordRateLimitHit(label)
		sendRateLimitError(w, "Too many requests. Please try again later.", retryAfter)
	}
	return ok
}

func (mw *Middleware) ipKey(r *http.Request) string {
	return hashIP(getIPWithTrustedProxies(r, mw.conf.Security.TrustedProxies))
}

// RateLimit applies the global per-IP limit / Applique la limite globale par IP
func (mw *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mw.globalLimiter != nil && !mw.limit(w, mw.globalLimiter, mw.ipKey(r), "global") {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitStrict is the tighter per-IP limit of the authentication endpoints.
func (mw *Middleware) RateLimitStrict(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mw.strictLimiter != nil && !mw.limit(w, mw.strictLimiter, mw.ipKey(r), "strict") {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitByUser applies rate limit per user / Applique une limite de taux par utilisateur
// Anonymous requests fall back to the client IP.
func (mw *Middleware) RateLimitByUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mw.userLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key, label := mw.ipKey(r), "user_ip"
		if userID, ok := UserIDFrom(r.Context()); ok {
			key, label = fmt.Sprintf("user_%d", userID), "user_authenticated"
		}
		if !mw.limit(w, mw.userLimiter, key, label) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitErrorResponse defines a structured response for rate limiting errors.
type RateLimitErrorResponse struct {
	Error      string    `json:"error"`               // A machine-readable error code.
	Message    string    `json:"message"`             // A human-readable error message.
	Code       int       `json:"code"`                // The HTTP status code.
	RetryAfter int       `json:"retry_after_seconds"` // Suggested time to wait before retrying, in seconds.
	Timestamp  time.Time `json:"timestamp"`
}

// sendRateLimitError sends a 429 with a structured body and Retry-After.
func sendRateLimitError(w http.ResponseWriter, message string, retryAfter int) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(RateLimitErrorResponse{
		Error:      "rate_limit_exceeded",
		Message:    message,
		Code:       http.StatusTooManyRequests,
		RetryAfter: retryAfter,
		Timestamp:  time.Now().UTC(),
	})
}

// addRateLimitHeaders reports the limiter state, similar to the GitHub API headers.
func addRateLimitHeaders(w http.ResponseWriter, limit, remaining int) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
}
