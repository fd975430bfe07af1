package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/auth"
	"github.com/pepsifleet/fleet-maintenance/internal/authz"
	"github.com/pepsifleet/fleet-maintenance/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	UserContextKey contextKey = "user"
)

// respondError writes the same {"error": ...} envelope the handlers use, so
// rejections at the middleware boundary look like every other failure.
func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate validates JWT tokens and adds user context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "se requiere el encabezado Authorization")
			return
		}

		claims, err := m.authService.ValidateToken(authHeader)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "token inválido")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePolicy checks the authorization table for (role, resource, action)
// at the service boundary.
func (m *AuthMiddleware) RequirePolicy(res authz.Resource, act authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(UserContextKey).(*models.Claims)
			if !ok {
				respondError(w, http.StatusUnauthorized, "contexto de usuario no encontrado")
				return
			}

			if !authz.Allowed(claims.Role, res, act) {
				respondError(w, http.StatusForbidden, "permisos insuficientes")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

// WithUser returns a context carrying the given claims; used by tests and
// internal calls.
func WithUser(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// RateLimitMiddleware provides basic rate limiting
type RateLimitMiddleware struct {
	requests  map[string][]int64 // IP -> timestamps
	mu        sync.RWMutex       // Mutex for thread-safe access
	lastSweep int64              // last full eviction of stale IPs
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{
		requests: make(map[string][]int64),
	}
}

// RateLimit applies rate limiting based on IP address
func (m *RateLimitMiddleware) RateLimit(maxRequests int, windowSeconds int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			now := time.Now().Unix()
			windowStart := now - int64(windowSeconds)

			m.mu.Lock()

			// Evict IPs that stopped sending, at most once per window, so
			// the map does not grow with every client ever seen.
			if now-m.lastSweep >= int64(windowSeconds) {
				m.sweepLocked(windowStart)
				m.lastSweep = now
			}

			if timestamps, exists := m.requests[clientIP]; exists {
				var validTimestamps []int64
				for _, ts := range timestamps {
					if ts >= windowStart {
						validTimestamps = append(validTimestamps, ts)
					}
				}
				m.requests[clientIP] = validTimestamps
			}

			if len(m.requests[clientIP]) >= maxRequests {
				m.mu.Unlock()
				respondError(w, http.StatusTooManyRequests, "demasiadas solicitudes")
				return
			}

			m.requests[clientIP] = append(m.requests[clientIP], now)
			m.mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

// sweepLocked removes IPs whose every timestamp fell out of the window.
// Callers must hold the write lock.
func (m *RateLimitMiddleware) sweepLocked(windowStart int64) {
	for ip, timestamps := range m.requests {
		stale := true
		for _, ts := range timestamps {
			if ts >= windowStart {
				stale = false
				break
			}
		}
		if stale {
			delete(m.requests, ip)
		}
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.Split(ip, ",")[0]
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}
