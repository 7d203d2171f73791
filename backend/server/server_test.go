package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikitalevshuk/university-tests/backend/controllers"
	"github.com/nikitalevshuk/university-tests/backend/models"
	"github.com/nikitalevshuk/university-tests/backend/store"
	"github.com/nikitalevshuk/university-tests/backend/testloader"
	"github.com/nikitalevshuk/university-tests/backend/testutil"
)

type fixture struct {
	handler  http.Handler
	users    *store.UserStore
	openID   uint
	hiddenID uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteTestFile(t, dir, "adaptation.json", "Адаптация первокурсника", "Вам легко знакомиться?", "Вы устаете к вечеру?")
	testutil.WriteTestFile(t, dir, "stress.json", "Уровень стресса", "Вы часто волнуетесь?")

	db := testutil.NewDB(t)
	tests := store.NewTestStore(db)
	open, err := tests.Create(context.Background(), "adaptation.json", true)
	require.NoError(t, err)
	hidden, err := tests.Create(context.Background(), "stress.json", false)
	require.NoError(t, err)

	loader, err := testloader.New(dir, time.Minute, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { loader.Close() })

	app := New(db, testutil.Config(dir), loader, zerolog.Nop())
	// The adaptor routes on RequestURI, which client-built requests leave empty.
	fiberHandler := adaptor.FiberApp(app)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.RequestURI = r.URL.RequestURI()
		fiberHandler.ServeHTTP(w, r)
	})
	return &fixture{
		handler:  handler,
		users:    store.NewUserStore(db),
		openID:   open.ID,
		hiddenID: hidden.ID,
	}
}

const registration = `{
	"first_name": "иван",
	"last_name": "петров",
	"middle_name": "сергеевич",
	"faculty": "ФКСИС",
	"course": 2,
	"password": "pass123"
}`

const credentials = `{
	"first_name": "Иван",
	"last_name": "Петров",
	"middle_name": "Сергеевич",
	"faculty": "ФКСИС",
	"course": 2,
	"password": "pass123"
}`

func (f *fixture) register(t *testing.T) {
	t.Helper()
	apitest.New().
		Handler(f.handler).
		Post("/auth/register").
		JSON(registration).
		Expect(t).
		Status(http.StatusCreated).
		End()
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()
	var token controllers.TokenResponse
	apitest.New().
		Handler(f.handler).
		Post("/auth/login").
		JSON(credentials).
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&token)
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func TestRegisterIssuesTokenAndCookie(t *testing.T) {
	f := newFixture(t)

	apitest.New().
		Handler(f.handler).
		Post("/auth/register").
		JSON(registration).
		Expect(t).
		Status(http.StatusCreated).
		CookiePresent("access_token").
		Assert(jsonpath.Present("$.access_token")).
		Assert(jsonpath.Equal("$.token_type", "bearer")).
		Assert(jsonpath.Equal("$.expires_in", float64(1800))).
		End()

	apitest.New().
		Handler(f.handler).
		Post("/auth/register").
		JSON(registration).
		Expect(t).
		Status(http.StatusConflict).
		End()
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	apitest.New().
		Handler(f.handler).
		Post("/auth/register").
		JSON(`{"first_name":"Ivan","last_name":"Петров","middle_name":"Сергеевич","faculty":"ФЭУ","course":7,"password":"пароль"}`).
		Expect(t).
		Status(http.StatusUnprocessableEntity).
		Assert(jsonpath.Present("$.details.first_name")).
		Assert(jsonpath.Present("$.details.faculty")).
		Assert(jsonpath.Present("$.details.course")).
		Assert(jsonpath.Present("$.details.password")).
		Assert(jsonpath.NotPresent("$.details.last_name")).
		End()

	apitest.New().
		Handler(f.handler).
		Post("/auth/register").
		Header("Content-Type", "application/json").
		Body(`{"first_name":`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	f := newFixture(t)
	f.register(t)

	bodies := []string{
		`{"first_name":"Иван","last_name":"Петров","middle_name":"Сергеевич","faculty":"ФКСИС","course":2,"password":"pass124"}`,
		`{"first_name":"Иван","last_name":"Петров","middle_name":"Сергеевич","faculty":"ФИБ","course":2,"password":"pass123"}`,
		`{"first_name":"Иван","last_name":"Петров","middle_name":"Сергеевич","faculty":"ФКСИС","course":3,"password":"pass123"}`,
		`{"first_name":"иван","last_name":"Петров","middle_name":"Сергеевич","faculty":"ФКСИС","course":2,"password":"pass123"}`,
	}
	for _, body := range bodies {
		apitest.New().
			Handler(f.handler).
			Post("/auth/login").
			JSON(body).
			Expect(t).
			Status(http.StatusUnauthorized).
			Header("WWW-Authenticate", "Bearer").
			CookieNotPresent("access_token").
			Assert(jsonpath.Equal("$.message", "Invalid credentials")).
			End()
	}
}

func TestSessionTransports(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	token := f.login(t)

	apitest.New().
		Handler(f.handler).
		Get("/auth/me").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.first_name", "Иван")).
		Assert(jsonpath.Equal("$.full_name", "Петров Иван Сергеевич")).
		Assert(jsonpath.Equal("$.faculty", "ФКСИС")).
		Assert(jsonpath.Equal("$.course", float64(2))).
		Assert(jsonpath.Len("$.completed_tests", 0)).
		Assert(jsonpath.NotPresent("$.password_hash")).
		End()

	apitest.New().
		Handler(f.handler).
		Get("/auth/me").
		Cookie("access_token", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		End()

	// A valid header wins over a broken cookie.
	apitest.New().
		Handler(f.handler).
		Get("/auth/me").
		Header("Authorization", "Bearer "+token).
		Cookie("access_token", "Bearer garbage").
		Expect(t).
		Status(http.StatusOK).
		End()

	for _, header := range []string{"", "Bearer garbage", "Basic " + token} {
		req := apitest.New().Handler(f.handler).Get("/auth/me")
		if header != "" {
			req = req.Header("Authorization", header)
		}
		req.Expect(t).
			Status(http.StatusUnauthorized).
			Header("WWW-Authenticate", "Bearer").
			Assert(jsonpath.Equal("$.message", "Could not validate credentials")).
			End()
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	f := newFixture(t)

	res := apitest.New().
		Handler(f.handler).
		Post("/auth/logout").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Present("$.message")).
		End()

	var cleared *http.Cookie
	for _, c := range res.Response.Cookies() {
		if c.Name == "access_token" {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)

	apitest.New().
		Handler(f.handler).
		Get("/tests/").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 2)).
		End()

	apitest.New().
		Handler(f.handler).
		Get("/tests/available").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		Assert(jsonpath.Equal("$[0].filename", "adaptation.json")).
		Assert(jsonpath.Equal("$[0].is_available", true)).
		End()

	apitest.New().
		Handler(f.handler).
		Get(fmt.Sprintf("/tests/%d", f.openID)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.filename", "adaptation.json")).
		End()

	for _, path := range []string{fmt.Sprintf("/tests/%d", f.hiddenID), "/tests/99"} {
		apitest.New().
			Handler(f.handler).
			Get(path).
			Expect(t).
			Status(http.StatusNotFound).
			End()
	}

	apitest.New().
		Handler(f.handler).
		Get("/tests/abc").
		Expect(t).
		Status(http.StatusUnprocessableEntity).
		End()
}

func TestTestContentETag(t *testing.T) {
	f := newFixture(t)
	path := fmt.Sprintf("/tests/%d/content", f.openID)

	res := apitest.New().
		Handler(f.handler).
		Get(path).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "Адаптация первокурсника")).
		Assert(jsonpath.Len("$.questions", 2)).
		End()
	etag := res.Response.Header.Get("ETag")
	require.NotEmpty(t, etag)

	apitest.New().
		Handler(f.handler).
		Get(path).
		Header("If-None-Match", etag).
		Expect(t).
		Status(http.StatusNotModified).
		End()

	apitest.New().
		Handler(f.handler).
		Get(path).
		Header("If-None-Match", `"stale", W/`+etag).
		Expect(t).
		Status(http.StatusNotModified).
		End()

	apitest.New().
		Handler(f.handler).
		Get(fmt.Sprintf("/tests/%d/content", f.hiddenID)).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestCompleteThenResults(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	token := f.login(t)
	bearer := "Bearer " + token
	complete := fmt.Sprintf("/user-tests/%d/complete", f.openID)
	results := fmt.Sprintf("/user-tests/%d/results", f.openID)

	apitest.New().
		Handler(f.handler).
		Get("/user-tests/status").
		Header("Authorization", bearer).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		Assert(jsonpath.Equal("$[0].status", "not_started")).
		Assert(jsonpath.Equal("$[0].test_title", "Адаптация первокурсника")).
		End()

	apitest.New().
		Handler(f.handler).
		Get(results).
		Header("Authorization", bearer).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	apitest.New().
		Handler(f.handler).
		Post(complete).
		Header("Authorization", bearer).
		JSON(`{"answers":["да","Нет","не знаю"],"result":{"score":10}}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.test_id", float64(f.openID))).
		Assert(jsonpath.Equal("$.result.score", float64(10))).
		End()

	var result models.TestResult
	apitest.New().
		Handler(f.handler).
		Get(results).
		Cookie("access_token", bearer).
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&result)
	assert.Equal(t, f.openID, result.TestID)
	assert.Equal(t, map[string]any{"score": float64(10)}, result.Result)
	assert.False(t, result.CompletedAt.IsZero())

	apitest.New().
		Handler(f.handler).
		Post(complete).
		Header("Authorization", bearer).
		JSON(`{"answers":["да"],"result":{"score":3}}`).
		Expect(t).
		Status(http.StatusConflict).
		End()

	apitest.New().
		Handler(f.handler).
		Get("/user-tests/status").
		Header("Authorization", bearer).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$[0].status", "completed")).
		Assert(jsonpath.Equal("$[0].result.score", float64(10))).
		End()

	user, err := f.users.FindByIdentity(context.Background(), models.Identity{
		FirstName:  "Иван",
		LastName:   "Петров",
		MiddleName: "Сергеевич",
		Faculty:    models.FacultyFKSIS,
		Course:     2,
	})
	require.NoError(t, err)
	require.Len(t, user.CompletedTests, 1)
	assert.True(t, user.CompletedTests[0].CompletedAt.Equal(result.CompletedAt))
}

func TestCompleteRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	f.register(t)
	bearer := "Bearer " + f.login(t)

	apitest.New().
		Handler(f.handler).
		Post(fmt.Sprintf("/user-tests/%d/complete", f.hiddenID)).
		Header("Authorization", bearer).
		JSON(`{"answers":["да"],"result":{"score":1}}`).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	var invalid struct {
		Details map[string]string `json:"details"`
	}
	apitest.New().
		Handler(f.handler).
		Post(fmt.Sprintf("/user-tests/%d/complete", f.openID)).
		Header("Authorization", bearer).
		JSON(`{"answers":["да","может быть"],"result":{"score":1}}`).
		Expect(t).
		Status(http.StatusUnprocessableEntity).
		End().
		JSON(&invalid)
	assert.Contains(t, invalid.Details, "answers[1]")
	assert.NotContains(t, invalid.Details, "answers[0]")

	apitest.New().
		Handler(f.handler).
		Post(fmt.Sprintf("/user-tests/%d/complete", f.openID)).
		Header("Authorization", bearer).
		JSON(`{"answers":["да"]}`).
		Expect(t).
		Status(http.StatusUnprocessableEntity).
		Assert(jsonpath.Present("$.details.result")).
		End()

	apitest.New().
		Handler(f.handler).
		Post(fmt.Sprintf("/user-tests/%d/complete", f.openID)).
		JSON(`{"answers":["да"],"result":{"score":1}}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	apitest.New().
		Handler(f.handler).
		Get("/health").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.status", "healthy")).
		Assert(jsonpath.Equal("$.version", controllers.Version)).
		End()

	apitest.New().
		Handler(f.handler).
		Get("/").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Present("$.message")).
		End()
}
