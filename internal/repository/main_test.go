package repository

import (
	"testing"

	"stackit/internal/database"
	"stackit/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// setupMockDB wires GORM to sqlmock for SQL-level assertions.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestQuestion(t *testing.T, db *gorm.DB, author *models.User, title, slug string) *models.Question {
	t.Helper()
	q := &models.Question{
		Title:    title,
		Content:  "question body",
		Slug:     slug,
		AuthorID: author.ID,
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

func createTestAnswer(t *testing.T, db *gorm.DB, author *models.User, questionID uint, parentID *uint) *models.Answer {
	t.Helper()
	a := &models.Answer{
		Content:    "answer body",
		QuestionID: questionID,
		AuthorID:   author.ID,
		ParentID:   parentID,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}
