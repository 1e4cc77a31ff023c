package service

import (
	"context"
	"fmt"

	"stackit/internal/models"
	"stackit/internal/repository"
)

// FollowService provides the user and tag follow graph.
type FollowService struct {
	followRepo       repository.FollowRepository
	userRepo         repository.UserRepository
	tagRepo          repository.TagRepository
	notificationRepo repository.NotificationRepository
	publisher        Publisher
}

// NewFollowService returns a new FollowService.
func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	tagRepo repository.TagRepository,
	notificationRepo repository.NotificationRepository,
	publisher Publisher,
) *FollowService {
	return &FollowService{
		followRepo:       followRepo,
		userRepo:         userRepo,
		tagRepo:          tagRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// FollowUser creates a follow edge toward the target and notifies them.
func (s *FollowService) FollowUser(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	if err := s.followRepo.FollowUser(ctx, actorID, targetID); err != nil {
		return err
	}

	emitNotification(ctx, s.notificationRepo, s.publisher, &models.Notification{
		Type:    models.NotificationUserFollowed,
		Title:   "New follower",
		Message: fmt.Sprintf("%s started following you", actor.Username),
		UserID:  targetID,
	})
	return nil
}

// UnfollowUser removes the follow edge toward the target.
func (s *FollowService) UnfollowUser(ctx context.Context, actorID, targetID uint) error {
	return s.followRepo.UnfollowUser(ctx, actorID, targetID)
}

// IsFollowingUser reports whether the actor follows the target.
func (s *FollowService) IsFollowingUser(ctx context.Context, actorID, targetID uint) (bool, error) {
	return s.followRepo.IsFollowingUser(ctx, actorID, targetID)
}

// ListFollowers returns the users following userID.
func (s *FollowService) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, userID, limit, offset)
}

// ListFollowing returns the users userID follows.
func (s *FollowService) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, userID, limit, offset)
}

// FollowTag subscribes the actor to a tag by name. No notification: tags
// have no owner to notify.
func (s *FollowService) FollowTag(ctx context.Context, actorID uint, tagName string) error {
	tag, err := s.tagRepo.GetByName(ctx, tagName)
	if err != nil {
		return err
	}
	return s.followRepo.FollowTag(ctx, actorID, tag.ID)
}

// UnfollowTag removes the actor's subscription to a tag.
func (s *FollowService) UnfollowTag(ctx context.Context, actorID uint, tagName string) error {
	tag, err := s.tagRepo.GetByName(ctx, tagName)
	if err != nil {
		return err
	}
	return s.followRepo.UnfollowTag(ctx, actorID, tag.ID)
}

// ListFollowedTags returns the tags the user follows.
func (s *FollowService) ListFollowedTags(ctx context.Context, userID uint) ([]models.Tag, error) {
	return s.followRepo.ListFollowedTags(ctx, userID)
}
