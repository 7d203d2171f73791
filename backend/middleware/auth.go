package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nikitalevshuk/university-tests/backend/auth"
	"github.com/nikitalevshuk/university-tests/backend/models"
	"github.com/nikitalevshuk/university-tests/backend/utils"
)

const currentUserKey = "current_user"

// AuthMiddleware resolves the session from the Authorization header or
// the access_token cookie and stores the user for CurrentUser.
func AuthMiddleware(resolver *auth.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := auth.TokenFromRequest(c)

		user, err := resolver.Resolve(c.UserContext(), token)
		if errors.Is(err, auth.ErrUnauthenticated) {
			return utils.AuthenticationFailed(err)
		}
		if err != nil {
			return err
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}
