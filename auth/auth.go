// Package auth binds HTTP clients to authenticated user identities via a
// signed session cookie. It performs no credential checks; callers verify
// the password first and then call CreateSession.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type ctxKey string

const (
	sessionCookieName = "session"
	userIDCtxKey      = ctxKey("userID")
)

// Session lifetimes. A plain login is tied to the browsing session but the
// signed expiry still bounds it server-side; "remember me" persists the
// cookie across browser restarts.
const (
	DefaultLifetime  = 24 * time.Hour
	RememberLifetime = 30 * 24 * time.Hour
)

// UserVerifier is an optional callback to validate that a session's user
// still exists. If nil, no extra verification is performed.
type UserVerifier func(ctx context.Context, uid uint) bool

// Sessions issues and validates signed session cookies. Construct one at
// startup and share it between the router and the handlers; it is safe for
// concurrent use (the secret is read-only after construction).
type Sessions struct {
	secret   []byte
	verifier UserVerifier
	now      func() time.Time
}

// New creates a Sessions manager signing cookies with secret.
func New(secret string) *Sessions {
	return &Sessions{secret: []byte(secret), now: time.Now}
}

// SetUserVerifier configures the verifier used by RequireAuth.
func (s *Sessions) SetUserVerifier(v UserVerifier) { s.verifier = v }

// sign computes the cookie signature over the uid and expiry fields.
func (s *Sessions) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie binding the client to userID,
// replacing any session already present on the client. With remember the
// cookie outlives the browsing session.
func (s *Sessions) CreateSession(w http.ResponseWriter, userID uint, remember bool) {
	lifetime := DefaultLifetime
	if remember {
		lifetime = RememberLifetime
	}
	exp := s.now().Add(lifetime)
	payload := strconv.FormatUint(uint64(userID), 10) + "." + strconv.FormatInt(exp.Unix(), 10)
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    payload + "." + s.sign(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		// Session cookies without Expires die with the browser; only the
		// remembered class gets a persistent cookie.
		cookie.Expires = exp
	}
	http.SetCookie(w, cookie)
}

// ClearSession deletes the session cookie.
func (s *Sessions) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie signature and expiry and returns the
// bound user id. It never fails loudly: any malformed, tampered or expired
// cookie is simply an anonymous request.
func (s *Sessions) ParseSession(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 3 {
		return 0, false
	}
	uidStr, expStr, sig := parts[0], parts[1], parts[2]
	expected := s.sign(uidStr + "." + expStr)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return 0, false
	}
	expUnix, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || s.now().After(time.Unix(expUnix, 0)) {
		return 0, false
	}
	id64, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts the current identity. ok is false for
// anonymous requests.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	v := ctx.Value(userIDCtxKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// Middleware attaches the user id to the request context if a valid
// session cookie is present.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := s.ParseSession(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects anonymous requests. HTML clients are redirected to
// /login with the originally requested path in the next parameter so the
// login handler can forward them back; API clients get 401 JSON.
func (s *Sessions) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if ok && s.verifier != nil && !s.verifier(r.Context(), uid) {
			// Session refers to a non-existing user: clear and treat as anonymous.
			s.ClearSession(w)
			ok = false
		}
		if !ok {
			accept := r.Header.Get("Accept")
			if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"unauthorized"}`)
				return
			}
			http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginURL builds the login redirect target carrying the requested path.
func LoginURL(r *http.Request) string {
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	if next == "" || next == "/login" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// SafeNext returns next if it is a relative path suitable for a post-login
// redirect, guarding against open redirects to other hosts.
func SafeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "", false
	}
	return next, true
}
