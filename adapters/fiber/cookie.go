package fiber

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

func sameSite(s http.SameSite) string {
	switch s {
	case http.SameSiteStrictMode:
		return fiber.CookieSameSiteStrictMode
	case http.SameSiteNoneMode:
		return fiber.CookieSameSiteNoneMode
	case http.SameSiteDefaultMode:
		return fiber.CookieSameSiteDisabled
	default:
		return fiber.CookieSameSiteLaxMode
	}
}

func (a *Adapter) setSessionCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookie.Name,
		Value:    token,
		Path:     a.cookie.Path,
		MaxAge:   int(a.cookie.MaxAge / time.Second),
		Expires:  time.Now().Add(a.cookie.MaxAge),
		Secure:   a.cookie.Secure,
		HTTPOnly: true,
		SameSite: sameSite(a.cookie.SameSite),
	})
}

// clearSessionCookie overwrites the cookie with an empty, already expired
// one carrying the same attributes.
func (a *Adapter) clearSessionCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookie.Name,
		Value:    "",
		Path:     a.cookie.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   a.cookie.Secure,
		HTTPOnly: true,
		SameSite: sameSite(a.cookie.SameSite),
	})
}

// extractToken reads the session token from the cookie, falling back to an
// "Authorization: Bearer <token>" or "Authorization: JWT <token>" header.
func (a *Adapter) extractToken(c fiber.Ctx) string {
	if token := c.Cookies(a.cookie.Name); token != "" {
		return token
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "bearer", "jwt":
		return strings.TrimSpace(token)
	}
	return ""
}
