package auth

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToken(t *testing.T) {
	cases := []struct {
		name          string
		authorization string
		cookie        string
		want          string
		ok            bool
	}{
		{"header only", "Bearer abc", "", "abc", true},
		{"cookie only", "", "Bearer xyz", "xyz", true},
		{"header wins", "Bearer abc", "Bearer xyz", "abc", true},
		{"raw cookie", "", "xyz", "xyz", true},
		{"neither", "", "", "", false},
		{"lowercase scheme", "bearer abc", "", "abc", true},
		{"other scheme falls back", "Basic dXNlcg==", "Bearer xyz", "xyz", true},
		{"empty bearer falls back", "Bearer ", "Bearer xyz", "xyz", true},
		{"bare token header ignored", "abc", "", "", false},
		{"prefix only cookie", "", "Bearer ", "", false},
		{"prefix stripped once", "", "Bearer Bearer xyz", "Bearer xyz", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractToken(tc.authorization, tc.cookie)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		token, ok := TokenFromRequest(c)
		if !ok {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.SendString(token)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", CookieName+"="+CookieValue("from-cookie"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", string(body))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	req.Header.Set("Cookie", CookieName+"="+CookieValue("from-cookie"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "from-header", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
