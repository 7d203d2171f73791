package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nikitalevshuk/university-tests/backend/middleware"
	"github.com/nikitalevshuk/university-tests/backend/models"
	"github.com/nikitalevshuk/university-tests/backend/store"
	"github.com/nikitalevshuk/university-tests/backend/testloader"
	"github.com/nikitalevshuk/university-tests/backend/utils"
)

var errAlreadyCompleted = errors.New("test already completed")

type ProgressController struct {
	Users  *store.UserStore
	Tests  *store.TestStore
	Loader *testloader.Loader
	now    func() time.Time
}

func NewProgressController(users *store.UserStore, tests *store.TestStore, loader *testloader.Loader) *ProgressController {
	return &ProgressController{Users: users, Tests: tests, Loader: loader, now: time.Now}
}

type CompleteTestRequest struct {
	Answers []string       `json:"answers" validate:"required,dive,answer"`
	Result  map[string]any `json:"result" validate:"required"`
}

type CompleteTestResponse struct {
	Message string         `json:"message"`
	TestID  uint           `json:"test_id"`
	Result  map[string]any `json:"result"`
}

// GetStatus godoc
// @Summary Completion status of every available test
// @Tags user-tests
// @Produce json
// @Success 200 {array} models.TestStatus
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user-tests/status [get]
func (pc *ProgressController) GetStatus(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	tests, err := pc.Tests.Available(c.UserContext())
	if err != nil {
		return err
	}

	statuses := make([]models.TestStatus, 0, len(tests))
	for _, test := range tests {
		statuses = append(statuses, user.StatusFor(test, pc.Loader.Title(test.Filename)))
	}
	return c.JSON(statuses)
}

// CompleteTest godoc
// @Summary Submit the result of a test
// @Description A test can be completed once per user
// @Tags user-tests
// @Accept json
// @Produce json
// @Param id path int true "Test ID"
// @Param request body CompleteTestRequest true "Answers and result"
// @Success 200 {object} CompleteTestResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user-tests/{id}/complete [post]
func (pc *ProgressController) CompleteTest(c *fiber.Ctx) error {
	id, err := testID(c)
	if err != nil {
		return err
	}

	var req CompleteTestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if verr := utils.ValidateStruct(req); verr != nil {
		return verr
	}

	ctx := c.UserContext()
	if _, err := pc.Tests.FindAvailable(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFoundError(testUnavailableMessage)
		}
		return err
	}

	user := middleware.CurrentUser(c)
	_, err = pc.Users.UpdateCompletions(ctx, user.ID, func(u *models.User) error {
		if u.HasCompleted(id) {
			return errAlreadyCompleted
		}
		u.RecordCompletion(id, req.Result, pc.now().UTC())
		return nil
	})
	if errors.Is(err, errAlreadyCompleted) {
		return utils.ConflictError("Test already completed")
	}
	if err != nil {
		return err
	}

	logger := utils.LoggerFrom(ctx)
	logger.Info().Uint("user_id", user.ID).Uint("test_id", id).Msg("test completed")
	return c.JSON(CompleteTestResponse{
		Message: "Test completed",
		TestID:  id,
		Result:  req.Result,
	})
}

// GetResults godoc
// @Summary Result of a completed test
// @Tags user-tests
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} models.TestResult
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user-tests/{id}/results [get]
func (pc *ProgressController) GetResults(c *fiber.Ctx) error {
	id, err := testID(c)
	if err != nil {
		return err
	}

	test, err := pc.Tests.FindByID(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFoundError("Test not found")
	}
	if err != nil {
		return err
	}

	entry, ok := middleware.CurrentUser(c).Completion(id)
	if !ok {
		return utils.NotFoundError("Test results not found, the test is not completed")
	}

	return c.JSON(models.TestResult{
		TestID:      id,
		TestTitle:   pc.Loader.Title(test.Filename),
		Result:      entry.Result,
		CompletedAt: entry.CompletedAt,
	})
}
