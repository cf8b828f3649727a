package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-video-share/pkg/auth"
	"github.com/wadjakorntonsri/go-video-share/pkg/config"
	"github.com/wadjakorntonsri/go-video-share/pkg/ports"
	"go.uber.org/zap"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, service ports.VideoService, issuer *auth.Issuer, logger *zap.Logger) http.Handler {
	h := NewHTTPHandler(service, cfg.UploadDir, cfg.MaxFileSize, logger)
	mw := NewMiddleware(issuer, logger)
	authHandler := NewAuthHandler(cfg, issuer, logger)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
	})
	mux.HandleFunc("GET /videos/share/{linkId}", h.ResolveShareLink)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes
	protected := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, mw.AuthMiddleware(fn))
	}
	protected("POST /videos/upload", h.Upload)
	protected("POST /videos/trim", h.Trim)
	protected("POST /videos/merge", h.Merge)
	protected("POST /videos/share/{videoId}", h.CreateShareLink)
	protected("GET /videos", h.List)
	protected("GET /videos/{id}", h.Get)

	return mw.Recover(mw.Logger(mux))
}
