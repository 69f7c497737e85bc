package middleware

import (
	"context"
	"net/http"
	"strings"

	"gitea.com/go-chi/session"

	"github.com/vukatravels/site/userctx"
)

// Session keys written by the login flow
const (
	SessionUserID             = "user_id"
	SessionUserNickname       = "user_nickname"
	SessionState              = "state"
	SessionRedirectAfterLogin = "redirect_after_login"
)

type sessionKey struct{}

// LoadUser copies the signed-in staff member from the session into the
// request context. It must run after the session middleware.
func LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess))

		userID, _ := sess.Get(SessionUserID).(string)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		nickname, _ := sess.Get(SessionUserNickname).(string)
		if nickname == "" {
			nickname = userID
		}
		next.ServeHTTP(w, r.WithContext(userctx.SetUser(r.Context(), userID, nickname)))
	})
}

// RequireAuth ensures the user is authenticated.
// Browsers are redirected to /login and the intended destination is stored;
// JSON clients get a 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userctx.GetUserID(r.Context()) != "" {
			next.ServeHTTP(w, r)
			return
		}

		if strings.Contains(r.Header.Get("Accept"), "application/json") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Authentication required"}`))
			return
		}

		if sess, ok := r.Context().Value(sessionKey{}).(session.Store); ok {
			sess.Set(SessionRedirectAfterLogin, r.URL.Path)
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}
