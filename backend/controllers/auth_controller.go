package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/nikitalevshuk/university-tests/backend/auth"
	"github.com/nikitalevshuk/university-tests/backend/config"
	"github.com/nikitalevshuk/university-tests/backend/models"
	"github.com/nikitalevshuk/university-tests/backend/store"
	"github.com/nikitalevshuk/university-tests/backend/utils"
)

type AuthController struct {
	Authenticator *auth.Authenticator
	Codec         *auth.TokenCodec
	Cfg           *config.Config
}

func NewAuthController(authenticator *auth.Authenticator, codec *auth.TokenCodec, cfg *config.Config) *AuthController {
	return &AuthController{Authenticator: authenticator, Codec: codec, Cfg: cfg}
}

type RegisterRequest struct {
	FirstName  string `json:"first_name" validate:"required,cyrillic_name" example:"Иван"`
	LastName   string `json:"last_name" validate:"required,cyrillic_name" example:"Петров"`
	MiddleName string `json:"middle_name" validate:"required,cyrillic_name" example:"Сергеевич"`
	Faculty    string `json:"faculty" validate:"required,faculty" example:"ФКСИС"`
	Course     int    `json:"course" validate:"required,course" example:"2"`
	Password   string `json:"password" validate:"required,min=6,max=32,password_charset" example:"secret1"`
}

func (r RegisterRequest) identity() models.Identity {
	faculty, _ := models.ParseFaculty(r.Faculty)
	course, _ := models.ParseCourse(r.Course)
	return models.Identity{
		FirstName:  utils.NormalizeName(r.FirstName),
		LastName:   utils.NormalizeName(r.LastName),
		MiddleName: utils.NormalizeName(r.MiddleName),
		Faculty:    faculty,
		Course:     course,
	}
}

// LoginRequest matches names exactly; they are not normalised.
type LoginRequest struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	MiddleName string `json:"middle_name" validate:"required"`
	Faculty    string `json:"faculty" validate:"required,faculty"`
	Course     int    `json:"course" validate:"required,course"`
	Password   string `json:"password" validate:"required"`
}

func (r LoginRequest) identity() models.Identity {
	faculty, _ := models.ParseFaculty(r.Faculty)
	course, _ := models.ParseCourse(r.Course)
	return models.Identity{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		MiddleName: r.MiddleName,
		Faculty:    faculty,
		Course:     course,
	}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Register godoc
// @Summary Register a new student
// @Description Creates an account and starts a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Identity and password"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if verr := utils.ValidateStruct(req); verr != nil {
		return verr
	}

	user, err := ac.Authenticator.Register(c.UserContext(), req.identity(), req.Password)
	if errors.Is(err, store.ErrConflict) {
		return utils.ConflictError("User with this identity already exists")
	}
	if err != nil {
		return err
	}

	logger := utils.LoggerFrom(c.UserContext())
	logger.Info().Uint("user_id", user.ID).Msg("user registered")

	resp, err := ac.startSession(c, user)
	if err != nil {
		return err
	}
	return utils.Created(c, resp)
}

// Login godoc
// @Summary Log in
// @Description Checks the identity and password and starts a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Identity and password"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if verr := utils.ValidateStruct(req); verr != nil {
		return verr
	}

	user, err := ac.Authenticator.Authenticate(c.UserContext(), req.identity(), req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return utils.InvalidCredentials(err)
	}
	if err != nil {
		return err
	}

	resp, err := ac.startSession(c, user)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} utils.MessageResponse
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(ac.cookie("", -1, fasthttp.CookieExpireDelete))
	return c.JSON(utils.MessageResponse{Message: "Logged out"})
}

func (ac *AuthController) startSession(c *fiber.Ctx, user *models.User) (TokenResponse, error) {
	token, err := ac.Codec.Issue(user.ID, user.FullName())
	if err != nil {
		return TokenResponse{}, err
	}

	ttl := int(ac.Codec.TTL().Seconds())
	c.Cookie(ac.cookie(auth.CookieValue(token), ttl, time.Time{}))
	return TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   ttl,
	}, nil
}

func (ac *AuthController) cookie(value string, maxAge int, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   ac.Cfg.CookieSecure,
		SameSite: ac.Cfg.CookieSameSite,
	}
}
