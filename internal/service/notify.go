// Package service provides application business logic (questions, answers, votes, follows).
package service

import (
	"context"
	"encoding/json"

	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/repository"
)

// Publisher pushes a realtime payload to a user's notification stream.
// *notifications.Notifier satisfies it; a nil Publisher disables delivery.
type Publisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// emitNotification persists a notification and pushes it to the owner's
// stream. Delivery is fire and forget: failures are logged, never returned,
// so a notification problem cannot fail the operation that triggered it.
func emitNotification(
	ctx context.Context,
	repo repository.NotificationRepository,
	pub Publisher,
	n *models.Notification,
) {
	if err := repo.Create(ctx, n); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to create notification",
			"type", n.Type, "user_id", n.UserID, "error", err)
		return
	}

	if pub == nil {
		return
	}
	event := map[string]interface{}{
		"type":    string(n.Type),
		"payload": n,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to marshal notification event",
			"type", n.Type, "error", err)
		return
	}
	if err := pub.PublishUser(ctx, n.UserID, string(eventJSON)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			"type", n.Type, "user_id", n.UserID, "error", err)
	}
}
