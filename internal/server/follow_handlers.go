// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow a user
// @Tags follows
// @Param id path int true "User ID to follow"
// @Success 200
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.followService.FollowUser(c.Context(), currentUserID(c), targetID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// UnfollowUser handles DELETE /api/users/:id/follow
// @Summary Unfollow a user
// @Tags follows
// @Param id path int true "User ID to unfollow"
// @Success 200
// @Failure 400 {object} models.ErrorResponse
// @Router /users/{id}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.followService.UnfollowUser(c.Context(), currentUserID(c), targetID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// GetFollowStatus handles GET /api/users/:id/follow
// @Summary Check whether the caller follows a user
// @Tags follows
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{following=bool}
// @Router /users/{id}/follow [get]
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.followService.IsFollowingUser(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"following": following,
	})
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary List a user's followers
// @Tags follows
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.PublicUser
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	followers, err := s.followService.ListFollowers(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(publicUsers(followers))
}

// GetFollowing handles GET /api/users/:id/following
// @Summary List users a user follows
// @Tags follows
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.PublicUser
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	following, err := s.followService.ListFollowing(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(publicUsers(following))
}

// FollowTag handles POST /api/tags/:name/follow
// @Summary Follow a tag
// @Tags follows
// @Param name path string true "Tag name"
// @Success 200
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{name}/follow [post]
func (s *Server) FollowTag(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid tag name"))
	}

	if err := s.followService.FollowTag(c.Context(), currentUserID(c), name); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// UnfollowTag handles DELETE /api/tags/:name/follow
// @Summary Unfollow a tag
// @Tags follows
// @Param name path string true "Tag name"
// @Success 200
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{name}/follow [delete]
func (s *Server) UnfollowTag(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid tag name"))
	}

	if err := s.followService.UnfollowTag(c.Context(), currentUserID(c), name); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// GetFollowedTags handles GET /api/me/tags
// @Summary List tags the caller follows
// @Tags follows
// @Produce json
// @Success 200 {array} models.Tag
// @Router /me/tags [get]
func (s *Server) GetFollowedTags(c *fiber.Ctx) error {
	tags, err := s.followService.ListFollowedTags(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(tags)
}
