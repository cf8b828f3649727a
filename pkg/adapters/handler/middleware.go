package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-video-share/pkg/auth"
	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "claims"

// authCookie is set by the OAuth callback
const authCookie = "auth_token"

type Middleware struct {
	issuer *auth.Issuer
	logger *zap.Logger
}

func NewMiddleware(issuer *auth.Issuer, logger *zap.Logger) *Middleware {
	return &Middleware{issuer: issuer, logger: logger}
}

// AuthMiddleware verifies the JWT from the Authorization header, falling back
// to the auth_token cookie
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			if cookie, err := r.Cookie(authCookie); err == nil {
				tokenString = cookie.Value
			}
		}
		if tokenString == "" {
			writeError(w, m.logger, domain.Unauthorized())
			return
		}

		claims, err := m.issuer.Verify(tokenString)
		if err != nil {
			writeError(w, m.logger, domain.Unauthorized())
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the verified claims of an authenticated request
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logger logs one line per request
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Recover turns a panic into a 500 response
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				m.logger.Error("panic serving request", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": domain.MsgInternalServerError})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
