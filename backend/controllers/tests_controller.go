package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nikitalevshuk/university-tests/backend/store"
	"github.com/nikitalevshuk/university-tests/backend/testloader"
	"github.com/nikitalevshuk/university-tests/backend/utils"
)

const testUnavailableMessage = "Test not found or unavailable"

type TestsController struct {
	Tests  *store.TestStore
	Loader *testloader.Loader
}

func NewTestsController(tests *store.TestStore, loader *testloader.Loader) *TestsController {
	return &TestsController{Tests: tests, Loader: loader}
}

type TestContentResponse struct {
	TestID      uint             `json:"test_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []map[string]any `json:"questions"`
}

// GetTests godoc
// @Summary List all tests
// @Tags tests
// @Produce json
// @Success 200 {array} models.Test
// @Router /tests/ [get]
func (tc *TestsController) GetTests(c *fiber.Ctx) error {
	tests, err := tc.Tests.All(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(tests)
}

// GetAvailableTests godoc
// @Summary List tests open for taking
// @Tags tests
// @Produce json
// @Success 200 {array} models.Test
// @Router /tests/available [get]
func (tc *TestsController) GetAvailableTests(c *fiber.Ctx) error {
	tests, err := tc.Tests.Available(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(tests)
}

// GetTest godoc
// @Summary Get one available test
// @Tags tests
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} models.Test
// @Failure 404 {object} utils.ErrorResponse
// @Router /tests/{id} [get]
func (tc *TestsController) GetTest(c *fiber.Ctx) error {
	id, err := testID(c)
	if err != nil {
		return err
	}

	test, err := tc.Tests.FindAvailable(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFoundError(testUnavailableMessage)
	}
	if err != nil {
		return err
	}
	return c.JSON(test)
}

// GetTestContent godoc
// @Summary Get the questions of an available test
// @Description Supports conditional requests through ETag / If-None-Match
// @Tags tests
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} TestContentResponse
// @Success 304
// @Failure 404 {object} utils.ErrorResponse
// @Router /tests/{id}/content [get]
func (tc *TestsController) GetTestContent(c *fiber.Ctx) error {
	id, err := testID(c)
	if err != nil {
		return err
	}

	test, err := tc.Tests.FindAvailable(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFoundError(testUnavailableMessage)
	}
	if err != nil {
		return err
	}

	content, ok := tc.Loader.Load(test.Filename)
	if !ok {
		return utils.NotFoundError("Test content not found")
	}

	c.Set(fiber.HeaderETag, content.ETag)
	if etagMatches(c.Get(fiber.HeaderIfNoneMatch), content.ETag) {
		return c.SendStatus(fiber.StatusNotModified)
	}
	return c.JSON(TestContentResponse{
		TestID:      test.ID,
		Title:       content.Title,
		Description: content.Description,
		Questions:   content.Questions,
	})
}

func testID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, utils.ValidationFailed(map[string]string{"id": "must be a positive integer"})
	}
	return uint(id), nil
}

// etagMatches reports whether an If-None-Match value names etag. The
// comparison is weak, so W/ prefixes are ignored.
func etagMatches(ifNoneMatch, etag string) bool {
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
