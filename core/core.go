package core

import (
	"net/http"
	"time"
)

// DefaultCookieName is the cookie carrying the session token.
const DefaultCookieName = "payload-token"

type SessionConfig struct {
	MaxAge time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 30 * 24 * time.Hour,
	}
}

type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CookieConfig describes the session cookie written on login.
type CookieConfig struct {
	Name     string
	Path     string
	MaxAge   time.Duration
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieConfig returns an HttpOnly, SameSite=Lax cookie scoped to
// "/" that lives as long as the session.
func DefaultCookieConfig(maxAge time.Duration, secure bool) CookieConfig {
	return CookieConfig{
		Name:     DefaultCookieName,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
