package auth

import (
	"context"
	"net/http"
	"time"
)

type contextKey string

const sessionKey contextKey = "session"

// Middleware loads the session referenced by the signed cookie into the
// request context. Every hit refreshes both the server-side expiry (via
// Store.Get) and the cookie itself, giving the sliding six-hour window.
// Requests without a valid session pass through with no session in context;
// handlers decide whether that means a redirect.
func Middleware(store Store, secret string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			sessionID, err := VerifySessionToken(secret, cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := store.Get(r.Context(), sessionID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Re-issue the cookie so its lifetime slides with the session.
			if signed, err := SignSessionToken(secret, sess.ID, ttl); err == nil {
				http.SetCookie(w, SessionCookie(signed, ttl))
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the session set by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(sessionKey).(*Session); ok {
		return sess
	}
	return nil
}

// WithSession is a test hook for handlers that expect a session in context.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionCookie builds the login cookie for a signed token.
func SessionCookie(signed string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie expires the login cookie.
func ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
