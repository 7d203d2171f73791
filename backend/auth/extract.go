package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// CookieName is the httpOnly cookie carrying "Bearer <token>".
	CookieName = "access_token"

	bearerPrefix = "Bearer "
)

// ExtractToken picks the raw token out of an Authorization header value
// and an access_token cookie value. A usable bearer header always wins;
// the cookie is the fallback for browsers that drop custom headers on
// cross-origin requests. ok is false when neither carries a token.
func ExtractToken(authorization, cookie string) (token string, ok bool) {
	if scheme, credentials, found := strings.Cut(authorization, " "); found {
		if strings.EqualFold(scheme, "bearer") {
			if credentials = strings.TrimSpace(credentials); credentials != "" {
				return credentials, true
			}
		}
	}

	if cookie == "" {
		return "", false
	}
	token = strings.TrimPrefix(cookie, bearerPrefix)
	if token == "" {
		return "", false
	}
	return token, true
}

// TokenFromRequest applies ExtractToken to the current request.
func TokenFromRequest(c *fiber.Ctx) (string, bool) {
	return ExtractToken(c.Get(fiber.HeaderAuthorization), c.Cookies(CookieName))
}

// CookieValue is the value stored in the session cookie for token.
func CookieValue(token string) string {
	return bearerPrefix + token
}
