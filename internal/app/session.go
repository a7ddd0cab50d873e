package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionCookie = "sectionsite_session"
	sessionTTL    = 12 * time.Hour
	sessionIssuer = "sectionsite"
)

// ErrBadCredentials reports a failed admin login.
var ErrBadCredentials = errors.New("invalid username or password")

type adminKey struct{}

// Sessions issues and verifies signed admin session cookies.
type Sessions struct {
	user     string
	password string
	secret   []byte
	now      func() time.Time
}

// NewSessions uses secret to sign tokens. An empty secret gets a random
// one, which invalidates sessions on restart.
func NewSessions(user, password, secret string) (*Sessions, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	return &Sessions{user: user, password: password, secret: key, now: time.Now}, nil
}

// Login checks credentials and returns a signed session token.
func (s *Sessions) Login(user, password string) (string, error) {
	if s.password == "" {
		return "", ErrBadCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return "", ErrBadCredentials
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   user,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify returns the admin named by a session token.
func (s *Sessions) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject != s.user {
		return "", ErrBadCredentials
	}
	return claims.Subject, nil
}

// Cookie wraps a token for the response.
func (s *Sessions) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// identify attaches the admin user, if any, to every request.
func (s *Sessions) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			if user, err := s.Verify(c.Value); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), adminKey{}, user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// AdminUser returns the authenticated admin for ctx, or "".
func AdminUser(ctx context.Context) string {
	user, _ := ctx.Value(adminKey{}).(string)
	return user
}

// requireAdmin sends anonymous visitors to the login form.
func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if AdminUser(r.Context()) == "" {
			http.Redirect(w, r, withQuery("/admin/login", "return_to", r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}
