package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nikitalevshuk/university-tests/backend/middleware"
	"github.com/nikitalevshuk/university-tests/backend/models"
)

type UserController struct{}

func NewUserController() *UserController {
	return &UserController{}
}

type ProfileResponse struct {
	ID             uint               `json:"id"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	MiddleName     string             `json:"middle_name"`
	FullName       string             `json:"full_name"`
	Faculty        models.Faculty     `json:"faculty"`
	Course         models.Course      `json:"course"`
	CreatedAt      time.Time          `json:"created_at"`
	CompletedTests models.Completions `json:"completed_tests"`
}

func NewProfileResponse(user *models.User) ProfileResponse {
	completed := user.CompletedTests
	if completed == nil {
		completed = models.Completions{}
	}
	return ProfileResponse{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		MiddleName:     user.MiddleName,
		FullName:       user.FullName(),
		Faculty:        user.Faculty,
		Course:         user.Course,
		CreatedAt:      user.CreatedAt,
		CompletedTests: completed,
	}
}

// GetProfile godoc
// @Summary Get current user
// @Description Returns the authenticated student's profile
// @Tags auth
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	return c.JSON(NewProfileResponse(middleware.CurrentUser(c)))
}
