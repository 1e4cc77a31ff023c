// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"stackit/internal/models"
	"stackit/internal/repository"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.User
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	users, err := s.userService.ListUsers(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUserByUsername handles GET /api/users/username/:username
// @Summary Get a user profile by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/username/{username} [get]
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid username"))
	}

	user, err := s.userService.GetUserByUsername(c.Context(), username)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUserQuestions handles GET /api/users/:id/questions
// @Summary List a user's questions
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{questions=[]models.Question,total=int}
// @Router /users/{id}/questions [get]
func (s *Server) GetUserQuestions(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	questions, total, err := s.questionService.ListQuestions(c.Context(), repository.QuestionListOptions{
		AuthorID: id,
		Sort:     c.Query("sort"),
		Limit:    page.Limit,
		Offset:   page.Offset,
		ViewerID: viewerID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"questions": questions,
		"total":     total,
	})
}

// GetUserAnswers handles GET /api/users/:id/answers
// @Summary List a user's answers
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.Answer
// @Router /users/{id}/answers [get]
func (s *Server) GetUserAnswers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	answers, err := s.answerRepo.ListByAuthor(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(answers)
}

// GetReputationHistory handles GET /api/users/:id/reputation
// @Summary List a user's reputation ledger
// @Description Events are ordered newest first; each carries the balance after it applied.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.ReputationEvent
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/reputation [get]
func (s *Server) GetReputationHistory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	events, err := s.userService.ListReputationEvents(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(events)
}

// UpdateMyProfile handles PUT /api/me
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,bio=string,avatar=string} true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Bio      string `json:"bio"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/me
// @Summary Delete own account
// @Tags users
// @Success 200
// @Router /me [delete]
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if err := s.userService.DeleteUser(c.Context(), userID, userID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// PromoteToAdmin handles POST /api/users/:id/promote-admin
// @Summary Grant admin privileges
// @Description Admin only.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/promote-admin [post]
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	return s.setAdminFlag(c, true)
}

// DemoteFromAdmin handles DELETE /api/users/:id/promote-admin
// @Summary Revoke admin privileges
// @Description Admin only.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/promote-admin [delete]
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	return s.setAdminFlag(c, false)
}

func (s *Server) setAdminFlag(c *fiber.Ctx, isAdmin bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.SetAdmin(c.Context(), id, isAdmin)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}
