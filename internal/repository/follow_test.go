package repository

import (
	"context"
	"testing"

	"stackit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_UserFollow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.FollowUser(ctx, alice.ID, bob.ID))

	following, err := repo.IsFollowingUser(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	t.Run("Duplicate Follow Conflicts", func(t *testing.T) {
		err := repo.FollowUser(ctx, alice.ID, bob.ID)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "CONFLICT", appErr.Code)

		var count int64
		db.Model(&models.UserFollow{}).Count(&count)
		assert.EqualValues(t, 1, count, "exactly one edge remains")
	})

	t.Run("Reverse Direction Is Distinct", func(t *testing.T) {
		require.NoError(t, repo.FollowUser(ctx, bob.ID, alice.ID))
	})

	t.Run("Unfollow", func(t *testing.T) {
		require.NoError(t, repo.UnfollowUser(ctx, alice.ID, bob.ID))

		following, err := repo.IsFollowingUser(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, following)

		err = repo.UnfollowUser(ctx, alice.ID, bob.ID)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestFollowRepository_ListFollowersAndFollowing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	require.NoError(t, repo.FollowUser(ctx, bob.ID, alice.ID))
	require.NoError(t, repo.FollowUser(ctx, carol.ID, alice.ID))
	require.NoError(t, repo.FollowUser(ctx, alice.ID, bob.ID))

	followers, err := repo.ListFollowers(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, followers, 2)

	following, err := repo.ListFollowing(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, bob.ID, following[0].ID)
}

func TestFollowRepository_TagFollow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	tagRepo := NewTagRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	tags, err := tagRepo.EnsureAll(ctx, []string{"go", "redis"})
	require.NoError(t, err)

	require.NoError(t, repo.FollowTag(ctx, alice.ID, tags[0].ID))
	require.NoError(t, repo.FollowTag(ctx, alice.ID, tags[1].ID))

	t.Run("Duplicate Conflicts", func(t *testing.T) {
		err := repo.FollowTag(ctx, alice.ID, tags[0].ID)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "CONFLICT", appErr.Code)
	})

	followed, err := repo.ListFollowedTags(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, followed, 2)
	assert.Equal(t, "go", followed[0].Name)

	require.NoError(t, repo.UnfollowTag(ctx, alice.ID, tags[0].ID))
	err = repo.UnfollowTag(ctx, alice.ID, tags[0].ID)
	require.Error(t, err)
}
