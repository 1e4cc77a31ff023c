package repository

import (
	"context"
	"testing"

	"stackit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagRepository_EnsureAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	tags, err := repo.EnsureAll(ctx, []string{"go", "testing", "go"})
	require.NoError(t, err)
	require.Len(t, tags, 2, "duplicate names collapse")

	// A second call reuses existing rows.
	again, err := repo.EnsureAll(ctx, []string{"go", "redis"})
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, tags[0].ID, again[0].ID)

	var count int64
	db.Model(&models.Tag{}).Count(&count)
	assert.EqualValues(t, 3, count)
}

func TestTagRepository_GetByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "asker")
	follower := createTestUser(t, db, "follower")

	tags, err := repo.EnsureAll(ctx, []string{"go"})
	require.NoError(t, err)
	q := createTestQuestion(t, db, author, "A go question", "a-go-question")
	require.NoError(t, db.Create(&models.QuestionTag{QuestionID: q.ID, TagID: tags[0].ID}).Error)
	require.NoError(t, db.Create(&models.TagFollow{UserID: follower.ID, TagID: tags[0].ID}).Error)

	got, err := repo.GetByName(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "go", got.Name)
	assert.Equal(t, 1, got.QuestionCount)
	assert.Equal(t, 1, got.FollowerCount)

	_, err = repo.GetByName(ctx, "missing")
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestTagRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "asker")
	tags, err := repo.EnsureAll(ctx, []string{"rare", "common"})
	require.NoError(t, err)

	q1 := createTestQuestion(t, db, author, "First question here", "first-question-here")
	q2 := createTestQuestion(t, db, author, "Second question here", "second-question-here")
	common := tags[1]
	require.NoError(t, db.Create(&models.QuestionTag{QuestionID: q1.ID, TagID: common.ID}).Error)
	require.NoError(t, db.Create(&models.QuestionTag{QuestionID: q2.ID, TagID: common.ID}).Error)

	got, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "common", got[0].Name)
	assert.Equal(t, 2, got[0].QuestionCount)
}
