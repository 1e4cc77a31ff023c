// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"stackit/internal/models"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAnswers handles GET /api/questions/:id/answers
// @Summary List answers for a question
// @Description Returns top-level answers with replies nested underneath.
// @Tags answers
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {array} models.Answer
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id}/answers [get]
func (s *Server) GetAnswers(c *fiber.Ctx) error {
	questionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	answers, err := s.answerService.ListAnswers(c.Context(), questionID, viewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(answers)
}

// CreateAnswer handles POST /api/questions/:id/answers
// @Summary Answer a question
// @Tags answers
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body object{content=string} true "Answer body"
// @Success 201 {object} models.Answer
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id}/answers [post]
func (s *Server) CreateAnswer(c *fiber.Ctx) error {
	questionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	answer, err := s.answerService.PostAnswer(c.Context(), service.PostAnswerInput{
		UserID:     currentUserID(c),
		QuestionID: questionID,
		Content:    req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(answer)
}

// ReplyToAnswer handles POST /api/answers/:id/reply
// @Summary Reply to an answer
// @Description Creates a threaded reply under an existing answer.
// @Tags answers
// @Accept json
// @Produce json
// @Param id path int true "Parent answer ID"
// @Param request body object{content=string} true "Reply body"
// @Success 201 {object} models.Answer
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /answers/{id}/reply [post]
func (s *Server) ReplyToAnswer(c *fiber.Ctx) error {
	parentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reply, err := s.answerService.PostReply(c.Context(), service.PostReplyInput{
		UserID:   currentUserID(c),
		ParentID: parentID,
		Content:  req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(reply)
}

// AcceptAnswer handles POST /api/answers/:id/accept
// @Summary Accept an answer
// @Description Marks the answer as accepted for its question. Question author only.
// @Tags answers
// @Produce json
// @Param id path int true "Answer ID"
// @Success 200 {object} models.Answer
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /answers/{id}/accept [post]
func (s *Server) AcceptAnswer(c *fiber.Ctx) error {
	answerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	answer, err := s.answerService.AcceptAnswer(c.Context(), currentUserID(c), answerID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(answer)
}

// VoteAnswer handles POST /api/answers/:id/vote
// @Summary Vote on an answer
// @Description Toggles the caller's vote and adjusts the author's reputation.
// @Tags answers
// @Accept json
// @Produce json
// @Param id path int true "Answer ID"
// @Param request body object{type=string} true "Vote direction: UP or DOWN"
// @Success 200 {object} models.VoteResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /answers/{id}/vote [post]
func (s *Server) VoteAnswer(c *fiber.Ctx) error {
	answerID, err := s.parseID(c, "id")
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

	result, err := s.voteService.CastAnswerVote(
		c.Context(), currentUserID(c), answerID, models.VoteType(req.Type))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// UpdateAnswer handles PUT /api/answers/:id
// @Summary Edit an answer
// @Description Only the answer author may edit.
// @Tags answers
// @Accept json
// @Produce json
// @Param id path int true "Answer ID"
// @Param request body object{content=string} true "New content"
// @Success 200 {object} models.Answer
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /answers/{id} [put]
func (s *Server) UpdateAnswer(c *fiber.Ctx) error {
	answerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	answer, err := s.answerService.UpdateAnswer(c.Context(), currentUserID(c), answerID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(answer)
}

// DeleteAnswer handles DELETE /api/answers/:id
// @Summary Delete an answer
// @Description The answer author or an admin may delete.
// @Tags answers
// @Param id path int true "Answer ID"
// @Success 200
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /answers/{id} [delete]
func (s *Server) DeleteAnswer(c *fiber.Ctx) error {
	answerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.answerService.DeleteAnswer(c.Context(), currentUserID(c), answerID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
