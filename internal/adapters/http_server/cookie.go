package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "campus_view"

var ErrNoSession = errors.New("no view session")

// SessionCookie signs the view session id into an HS256 token carried in an
// HTTP-only cookie. The token's subject is the session id.
type SessionCookie struct {
	secret   []byte
	lifetime time.Duration
	secure   bool
	now      func() time.Time
}

func NewSessionCookie(secret string, lifetime time.Duration, secure bool) (*SessionCookie, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("session secret must be configured")
	}
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &SessionCookie{secret: []byte(trimmed), lifetime: lifetime, secure: secure, now: time.Now}, nil
}

func (c *SessionCookie) Issue(w http.ResponseWriter, sessionID string) error {
	now := c.now()
	exp := now.Add(c.lifetime)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
	return nil
}

// SessionID returns the verified session id carried by r.
func (c *SessionCookie) SessionID(r *http.Request) (string, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", ErrNoSession
	}
	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(ck.Value, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		return "", errors.Join(ErrNoSession, err)
	}
	if claims.Subject == "" {
		return "", ErrNoSession
	}
	return claims.Subject, nil
}

func (c *SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
