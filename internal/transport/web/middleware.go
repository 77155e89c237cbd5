package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/metrics"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/service/auth"
	"github.com/google/uuid"
)

const (
	bearerPrefix    = "Bearer "
	RequestIDHeader = "X-Request-ID"
)

// ActivityRecorder stores audit entries / Enregistre les entrées d'audit
type ActivityRecorder interface {
	Record(ctx context.Context, a *domain.UserActivity)
}

// Middleware holds middleware configuration and dependencies / Contient la configuration middleware
type Middleware struct {
	conf          *config.Config
	globalLimiter *RateLimiter
	strictLimiter *RateLimiter
	userLimiter   *RateLimiter
	metrics       *metrics.Metrics
	perms         ports.PermissionRepository
	activity      ActivityRecorder
	cancel        context.CancelFunc
}

// responseWriter wraps ResponseWriter to capture status / Encapsule ResponseWriter pour capturer le statut
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures status code / Capture le code de statut
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// NewMiddleware creates middleware with rate limiters / Crée le middleware avec limiteurs
func NewMiddleware(conf *config.Config, metrics *metrics.Metrics, perms ports.PermissionRepository, activity ActivityRecorder) *Middleware {
	ctx, cancel := context.WithCancel(context.Background())
	mw := &Middleware{
		conf:     conf,
		metrics:  metrics,
		perms:    perms,
		activity: activity,
		cancel:   cancel,
	}

	if conf.RateLimiter.Enabled {
		mw.globalLimiter = NewRateLimiter(ctx, conf.RateLimiter.RPS, conf.RateLimiter.Burst)

		strictRPS := conf.RateLimiter.RPS
		strictBurst := conf.RateLimiter.Burst
		if conf.IsProduction() {
			strictRPS = strictRPS / 2
			if strictBurst > 2 {
				strictBurst = strictBurst / 2
			}
		}
		mw.strictLimiter = NewRateLimiter(ctx, strictRPS, strictBurst)

		mw.userLimiter = NewRateLimiter(ctx, conf.RateLimiter.RPS*2, conf.RateLimiter.Burst*2)
	}

	return mw
}

// Stop ends the limiters' cleanup goroutines.
func (m *Middleware) Stop() {
	m.cancel()
}

// RequestID generates unique request ID / Génère un ID unique pour la requête
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging logs HTTP requests and prevents token leaks / Enregistre les requêtes et prévient les fuites
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("Content-Type", "application/json")

		if strings.Contains(r.URL.RawQuery, "access_token=") ||
			strings.Contains(r.URL.RawQuery, "refresh_token=") {
			slog.Error("token leak detected", "path", r.URL.Path, "ip", r.RemoteAddr)
			ErrorResponse(w, "forbidden", http.StatusForbidden)
			return
		}

		rw := wrap(w)
		next.ServeHTTP(rw, r)

		slog.Info("request",
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}

// MetricsMiddleware tracks HTTP request metrics / Suit les métriques des requêtes HTTP
// The route pattern is used as label so path IDs do not explode cardinality.
func (m *Middleware) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.metrics.IncrementActiveConnections()
		defer m.metrics.DecrementActiveConnections()

		rw := wrap(w)
		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.metrics.RecordHTTPRequest(r.Method, route, rw.statusCode)
		m.metrics.RecordHTTPDuration(r.Method, route, time.Since(start))
	})
}

// Timeout adds request timeout / Ajoute un timeout aux requêtes
// Handlers see the deadline through their request context.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if duration <= 0 {
			return next
		}
		return http.TimeoutHandler(next, duration, `{"error":"request timeout"}`)
	}
}

// Auth validates JWT tokens / Valide les tokens JWT
// The token comes from the access_token cookie or an Authorization bearer header.
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenStr string
		if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
			tokenStr = cookie.Value
		} else {
			authorization := r.Header.Get("Authorization")
			if !strings.HasPrefix(authorization, bearerPrefix) {
				ErrorResponse(w, "authentication required", http.StatusUnauthorized)
				return
			}
			tokenStr = strings.TrimPrefix(authorization, bearerPrefix)
		}

		claims, err := auth.ValidateJWT(tokenStr, m.conf.Auth.JWTSecret)
		if err != nil {
			m.metrics.RecordInvalidToken()
			ErrorResponse(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			slog.Error("failed to parse user ID from token", "subject", claims.Subject, "err", err)
			ErrorResponse(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		ctx = context.WithValue(ctx, UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Cors handles CORS headers / Gère les en-têtes CORS
func (m *Middleware) Cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range m.conf.Cors.AllowedOrigins {
			if allowed == "*" || allowed == origin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-CSRF-Token")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders adds security headers / Ajoute les en-têtes de sécurité
func (m *Middleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The API only serves JSON and workbooks.
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")

		if m.conf.IsProduction() {
			w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}

		next.ServeHTTP(w, r)
	})
}

// CSRF protects against CSRF attacks / Protège contre les attaques CSRF
// Requests authenticated by a bearer header carry no ambient credential and skip the check.
func (m *Middleware) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(accessTokenCookie); err != nil && strings.HasPrefix(r.Header.Get("Authorization"), bearerPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		var cookieToken string
		if cookie, err := r.Cookie(csrfTokenCookie); err == nil {
			cookieToken = cookie.Value
		}
		headerToken := r.Header.Get(csrfTokenHeader)

		if cookieToken == "" || headerToken == "" || cookieToken != headerToken {
			m.metrics.RecordCSRFFailure()
			slog.Warn("CSRF token mismatch", "cookie_len", len(cookieToken), "header_len", len(headerToken))
			ErrorResponse(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission checks user permission / Vérifie la permission de l'utilisateur
func (m *Middleware) RequirePermission(permission domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFrom(r.Context())
			if !ok {
				slog.Error("RequirePermission: user ID not found in context, Auth middleware not applied?")
				ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			hasPermission, err := m.perms.UserHasPermission(r.Context(), userID, permission)
			if err != nil {
				slog.Error("RequirePermission: failed to check user permission",
					"user_id", userID,
					"permission", permission,
					"err", err,
				)
				ErrorResponse(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if !hasPermission {
				m.metrics.RecordPermissionDenial(permission.String())
				slog.Warn("permission denied",
					"user_id", userID,
					"permission", permission,
					"path", r.URL.Path,
					"method", r.Method,
				)
				ErrorResponse(w, "Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Activity records successful mutating requests in the audit log.
// Enregistre les requêtes de modification réussies dans le journal d'audit.
func (m *Middleware) Activity(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			if rw.statusCode < 200 || rw.statusCode >= 300 {
				return
			}
			userID, _ := UserIDFrom(r.Context())
			m.activity.Record(context.WithoutCancel(r.Context()), &domain.UserActivity{
				UserID:     userID,
				Action:     action,
				Path:       r.URL.Path,
				EntityID:   entityID(r),
				StatusCode: rw.statusCode,
				IPHash:     hashIP(getIPWithTrustedProxies(r, m.conf.Security.TrustedProxies)),
			})
		})
	}
}

// entityID returns the first path parameter naming the touched record.
func entityID(r *http.Request) string {
	for _, name := range []string{"id", "matricule"} {
		if v := r.PathValue(name); v != "" {
			return v
		}
	}
	return ""
}
