package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"gitea.com/go-chi/session"
	"go.uber.org/zap"

	"github.com/vukatravels/site/authenticator"
	"github.com/vukatravels/site/middleware"
)

// defaultAfterLogin is where staff land when no destination was stored
const defaultAfterLogin = "/admin/audit"

type AuthController struct {
	logger *zap.Logger
}

func NewAuthController(logger *zap.Logger) *AuthController {
	return &AuthController{logger: logger}
}

// Login initiates the authentication process
func (ac *AuthController) Login(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := generateRandomState()
		if err != nil {
			http.Error(w, "Failed to start login", http.StatusInternalServerError)
			return
		}

		// Save the state in the session to validate in callback
		sess := session.GetSession(r)
		sess.Set(middleware.SessionState, state)

		http.Redirect(w, r, auth.GetAuthURL(state), http.StatusTemporaryRedirect)
	}
}

// Callback handles the redirect back from the identity provider
func (ac *AuthController) Callback(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)

		storedState, _ := sess.Get(middleware.SessionState).(string)
		if storedState == "" {
			http.Error(w, "State not found in session", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("state") != storedState {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := auth.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			ac.logger.Warn("Code exchange failed", zap.Error(err))
			http.Error(w, "Failed to exchange authorization code", http.StatusUnauthorized)
			return
		}

		claims, err := auth.GetClaims(r.Context(), token)
		if err != nil {
			ac.logger.Warn("ID token verification failed", zap.Error(err))
			http.Error(w, "Failed to verify ID token", http.StatusUnauthorized)
			return
		}
		if claims.Subject() == "" {
			http.Error(w, "ID token has no subject", http.StatusUnauthorized)
			return
		}

		sess.Set(middleware.SessionUserID, claims.Subject())
		sess.Set(middleware.SessionUserNickname, claims.DisplayName())
		sess.Delete(middleware.SessionState)

		ac.logger.Info("Staff signed in", zap.String("user", claims.DisplayName()))

		target := defaultAfterLogin
		if dest, ok := sess.Get(middleware.SessionRedirectAfterLogin).(string); ok && isLocalPath(dest) {
			target = dest
			sess.Delete(middleware.SessionRedirectAfterLogin)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// Logout clears the staff session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	sess.Delete(middleware.SessionUserID)
	sess.Delete(middleware.SessionUserNickname)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// isLocalPath rejects absolute and scheme-relative redirect targets
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//")
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
