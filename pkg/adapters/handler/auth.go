package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/wadjakorntonsri/go-video-share/pkg/auth"
	"github.com/wadjakorntonsri/go-video-share/pkg/config"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	sessionTTL        = 24 * time.Hour
)

// AuthHandler runs the Google login flow and hands out the same bearer
// tokens the API accepts, as an auth_token cookie
type AuthHandler struct {
	oauthConfig   *oauth2.Config
	issuer        *auth.Issuer
	frontendURL   string
	allowedEmails []string
	isProduction  bool
	logger        *zap.Logger
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func NewAuthHandler(cfg *config.Config, issuer *auth.Issuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		issuer:        issuer,
		frontendURL:   cfg.FrontendURL,
		allowedEmails: cfg.AllowedEmails,
		isProduction:  cfg.AppEnv == "production",
		logger:        logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := h.generateStateOauthCookie(w)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	url := h.oauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	oauthState, err := r.Cookie("oauthstate")
	if err != nil {
		h.logger.Warn("oauth callback without state cookie", zap.Error(err))
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	if r.FormValue("state") != oauthState.Value {
		h.logger.Warn("oauth state mismatch")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid oauth google state"})
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		h.logger.Error("oauth code exchange failed", zap.Error(err))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "code exchange failed"})
		return
	}

	response, err := h.oauthConfig.Client(r.Context(), token).Get(googleUserInfoURL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defer response.Body.Close()

	var googleUser GoogleUser
	if err := json.NewDecoder(response.Body).Decode(&googleUser); err != nil {
		writeError(w, h.logger, err)
		return
	}

	// Email Allowlist Check
	if len(h.allowedEmails) > 0 && !slices.Contains(h.allowedEmails, googleUser.Email) {
		h.logger.Warn("email not in allowlist", zap.String("email", googleUser.Email))
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Access denied: your email is not in the allowlist"})
		return
	}

	tokenString, err := h.issuer.Issue(googleUser.Email, "", sessionTTL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    tokenString,
		Expires:  time.Now().Add(sessionTTL),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("login successful", zap.String("email", googleUser.Email))
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}
