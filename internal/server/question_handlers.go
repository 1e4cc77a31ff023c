// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"stackit/internal/models"
	"stackit/internal/repository"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetQuestions handles GET /api/questions
// @Summary List questions
// @Description List questions with optional search, tag filter and sorting
// @Tags questions
// @Produce json
// @Param search query string false "Full-text search over title and content"
// @Param tag query string false "Filter by tag name"
// @Param sort query string false "Sort order: newest, votes or views"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{questions=[]models.Question,total=int}
// @Failure 400 {object} models.ErrorResponse
// @Router /questions [get]
func (s *Server) GetQuestions(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	questions, total, err := s.questionService.ListQuestions(c.Context(), repository.QuestionListOptions{
		Search:   c.Query("search"),
		Tag:      c.Query("tag"),
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
		"limit":     page.Limit,
		"offset":    page.Offset,
	})
}

// GetQuestion handles GET /api/questions/:id
// @Summary Get a question
// @Description Fetch a single question with its threaded answers. Counts a view.
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} models.Question
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id} [get]
func (s *Server) GetQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	question, err := s.questionService.GetQuestion(c.Context(), id, viewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(question)
}

// GetQuestionBySlug handles GET /api/questions/slug/:slug
// @Summary Get a question by slug
// @Tags questions
// @Produce json
// @Param slug path string true "Question slug"
// @Success 200 {object} models.Question
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/slug/{slug} [get]
func (s *Server) GetQuestionBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid slug"))
	}

	question, err := s.questionService.GetQuestionBySlug(c.Context(), slug, viewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(question)
}

// CreateQuestion handles POST /api/questions
// @Summary Ask a question
// @Tags questions
// @Accept json
// @Produce json
// @Param request body object{title=string,content=string,tags=[]string} true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} models.ErrorResponse
// @Router /questions [post]
func (s *Server) CreateQuestion(c *fiber.Ctx) error {
	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	question, err := s.questionService.AskQuestion(c.Context(), service.AskQuestionInput{
		UserID:  currentUserID(c),
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(question)
}

// UpdateQuestion handles PUT /api/questions/:id
// @Summary Edit a question
// @Description Only the question author may edit. Omitted fields are kept.
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body object{title=string,content=string,tags=[]string} true "Fields to update"
// @Success 200 {object} models.Question
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id} [put]
func (s *Server) UpdateQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	question, err := s.questionService.UpdateQuestion(c.Context(), service.UpdateQuestionInput{
		UserID:     currentUserID(c),
		QuestionID: id,
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(question)
}

// DeleteQuestion handles DELETE /api/questions/:id
// @Summary Delete a question
// @Description The question author or an admin may delete.
// @Tags questions
// @Param id path int true "Question ID"
// @Success 200
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id} [delete]
func (s *Server) DeleteQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.questionService.DeleteQuestion(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// VoteQuestion handles POST /api/questions/:id/vote
// @Summary Vote on a question
// @Description Toggles the caller's vote: same direction retracts, opposite flips.
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body object{type=string} true "Vote direction: UP or DOWN"
// @Success 200 {object} models.VoteResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id}/vote [post]
func (s *Server) VoteQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Type string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.voteService.CastQuestionVote(
		c.Context(), currentUserID(c), id, models.VoteType(req.Type))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// GetTags handles GET /api/tags
// @Summary List tags
// @Tags tags
// @Produce json
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Tag
// @Router /tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	tags, err := s.questionService.ListTags(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(tags)
}
