package repository

import (
	"context"
	"testing"

	"stackit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	stranger := createTestUser(t, db, "stranger")

	first := &models.Notification{
		Type: models.NotificationQuestionAnswered, Title: "New answer",
		Message: "Someone answered your question", UserID: owner.ID,
	}
	second := &models.Notification{
		Type: models.NotificationUserFollowed, Title: "New follower",
		Message: "stranger followed you", UserID: owner.ID,
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	unread, err := repo.CountUnread(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	list, err := repo.ListByUser(ctx, owner.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	t.Run("MarkRead Requires Ownership", func(t *testing.T) {
		err := repo.MarkRead(ctx, stranger.ID, first.ID)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", appErr.Code)

		unread, err := repo.CountUnread(ctx, owner.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, unread)
	})

	t.Run("MarkRead", func(t *testing.T) {
		require.NoError(t, repo.MarkRead(ctx, owner.ID, first.ID))

		unread, err := repo.CountUnread(ctx, owner.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, unread)
	})

	t.Run("MarkAllRead", func(t *testing.T) {
		require.NoError(t, repo.MarkAllRead(ctx, owner.ID))

		unread, err := repo.CountUnread(ctx, owner.ID)
		require.NoError(t, err)
		assert.Zero(t, unread)
	})
}
