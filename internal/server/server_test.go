package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/middleware"
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp builds a Fiber app backed by an in-memory SQLite database with
// the full route table mounted. Redis is absent, so rate limits fail open and
// realtime delivery is disabled.
func newTestApp(t *testing.T) (*fiber.App, *Server) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		Port:           "0",
		AllowedOrigins: "http://localhost:5173",
		Env:            "test",
	}
	middleware.InitMiddleware(cfg)

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerUser signs up a fresh account through the API and returns its token.
func registerUser(t *testing.T, app *fiber.App, username string) (string, uint) {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "Str0ngPass!word",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token, body.User.ID
}

func askQuestion(t *testing.T, app *fiber.App, token, title string, tags []string) models.Question {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/questions", token, fiber.Map{
		"title":   title,
		"content": "How would one go about doing this properly in production?",
		"tags":    tags,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var q models.Question
	decodeBody(t, resp, &q)
	return q
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	token, userID := registerUser(t, app, "alice")
	assert.NotZero(t, userID)

	// Cannot register the same email twice
	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "Str0ngPass!word",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login with correct credentials
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "Str0ngPass!word",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Login with wrong password
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Me returns the authenticated profile
	resp = doJSON(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.User
	decodeBody(t, resp, &me)
	assert.Equal(t, "alice", me.Username)
}

func TestLoginSetsHTTPOnlyCookie(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "cookiemonster")

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "cookiemonster@example.com",
		"password": "Str0ngPass!word",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookieName {
			found = true
			assert.True(t, c.HttpOnly)
			assert.NotEmpty(t, c.Value)
		}
	}
	assert.True(t, found, "expected session cookie on login response")
}

func TestGetUserByUsername(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "lookupme")

	resp := doJSON(t, app, http.MethodGet, "/api/users/username/lookupme", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user models.User
	decodeBody(t, resp, &user)
	assert.Equal(t, "lookupme", user.Username)

	// Unknown usernames are a 404, never a 200 with a null body
	resp = doJSON(t, app, http.MethodGet, "/api/users/username/nobody-here", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuestionLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	token, userID := registerUser(t, app, "asker")

	q := askQuestion(t, app, token, "How do I profile goroutine leaks?", []string{"go", "profiling"})
	assert.Equal(t, userID, q.AuthorID)
	assert.NotEmpty(t, q.Slug)
	require.Len(t, q.Tags, 2)

	// Anonymous fetch works and counts a view
	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/questions/%d", q.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Question
	decodeBody(t, resp, &fetched)
	assert.Equal(t, 1, fetched.Views)

	// Edit by the author
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/questions/%d", q.ID), token, fiber.Map{
		"title": "How do I profile goroutine leaks in production?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &fetched)
	assert.Equal(t, "How do I profile goroutine leaks in production?", fetched.Title)

	// Edit by a stranger is forbidden
	strangerToken, _ := registerUser(t, app, "stranger")
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/questions/%d", q.ID), strangerToken, fiber.Map{
		"title": "Hijacked title that is long enough",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Delete by the author
	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/questions/%d", q.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/questions/%d", q.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateQuestionValidation(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "validator")

	resp := doJSON(t, app, http.MethodPost, "/api/questions", token, fiber.Map{
		"title":   "short",
		"content": "body",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Anonymous asks are rejected
	resp = doJSON(t, app, http.MethodPost, "/api/questions", "", fiber.Map{
		"title":   "A perfectly reasonable question title",
		"content": "body",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVoteEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	askerToken, _ := registerUser(t, app, "vasker")
	voterToken, _ := registerUser(t, app, "voter")

	q := askQuestion(t, app, askerToken, "Does voting toggle correctly?", nil)

	// Anonymous votes are rejected
	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/questions/%d/vote", q.ID), "", fiber.Map{
		"type": "UP",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Bad direction is a validation error
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/questions/%d/vote", q.ID), voterToken, fiber.Map{
		"type": "SIDEWAYS",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Upvote, then retract by voting the same direction again
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/questions/%d/vote", q.ID), voterToken, fiber.Map{
		"type": "UP",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result models.VoteResult
	decodeBody(t, resp, &result)
	assert.Equal(t, 1, result.VoteCount)
	assert.Equal(t, "UP", result.ViewerVote)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/questions/%d/vote", q.ID), voterToken, fiber.Map{
		"type": "UP",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &result)
	assert.Equal(t, 0, result.VoteCount)
	assert.Empty(t, result.ViewerVote)

	// Voting a missing question is a 404
	resp = doJSON(t, app, http.MethodPost, "/api/questions/99999/vote", voterToken, fiber.Map{
		"type": "UP",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnswerFlow(t *testing.T) {
	app, _ := newTestApp(t)
	askerToken, _ := registerUser(t, app, "fasker")
	answererToken, answererID := registerUser(t, app, "fanswerer")

	q := askQuestion(t, app, askerToken, "What does the accept flow look like?", nil)

	// Post an answer
	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/questions/%d/answers", q.ID), answererToken, fiber.Map{
		"content": "Here is a thorough answer.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var answer models.Answer
	decodeBody(t, resp, &answer)
	assert.Equal(t, answererID, answer.AuthorID)

	// Reply to the answer resolves the question from the parent
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/answers/%d/reply", answer.ID), askerToken, fiber.Map{
		"content": "A follow-up question on that.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reply models.Answer
	decodeBody(t, resp, &reply)
	assert.Equal(t, q.ID, reply.QuestionID)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, answer.ID, *reply.ParentID)

	// Only the question author may accept
	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/answers/%d/accept", answer.ID), answererToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/answers/%d/accept", answer.ID), askerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var accepted models.Answer
	decodeBody(t, resp, &accepted)
	assert.True(t, accepted.IsAccepted)

	// Accepting grants the answer author the reputation bonus
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", answererID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var author models.User
	decodeBody(t, resp, &author)
	assert.Equal(t, models.ReputationAcceptedBonus, author.Reputation)

	// The answer listing nests the reply under its parent
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/questions/%d/answers", q.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var answers []models.Answer
	decodeBody(t, resp, &answers)
	require.Len(t, answers, 1)
	require.Len(t, answers[0].Replies, 1)
	assert.Equal(t, reply.ID, answers[0].Replies[0].ID)
}

func TestFollowEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	aliceToken, _ := registerUser(t, app, "falice")
	_, bobID := registerUser(t, app, "fbob")

	// Follow, then duplicate follow is a conflict reported as 400
	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status struct {
		Following bool `json:"following"`
	}
	decodeBody(t, resp, &status)
	assert.True(t, status.Following)

	// Follower listings expose the public shape only, never emails
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/followers", bobID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var followers []map[string]interface{}
	decodeBody(t, resp, &followers)
	require.Len(t, followers, 1)
	assert.Equal(t, "falice", followers[0]["username"])
	assert.NotContains(t, followers[0], "email")

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFollowTagEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	token, _ := registerUser(t, app, "taggy")

	// Tags spring into existence with questions
	askQuestion(t, app, token, "A question about concurrency patterns", []string{"concurrency"})

	resp := doJSON(t, app, http.MethodPost, "/api/tags/concurrency/follow", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/tags/no-such-tag/follow", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/me/tags", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tags []models.Tag
	decodeBody(t, resp, &tags)
	require.Len(t, tags, 1)
	assert.Equal(t, "concurrency", tags[0].Name)

	resp = doJSON(t, app, http.MethodDelete, "/api/tags/concurrency/follow", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNotificationEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	aliceToken, _ := registerUser(t, app, "nalice")
	bobToken, bobID := registerUser(t, app, "nbob")

	// Following bob generates a notification for him
	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/notifications", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var notifs []models.Notification
	decodeBody(t, resp, &notifs)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationUserFollowed, notifs[0].Type)

	resp = doJSON(t, app, http.MethodGet, "/api/notifications/unread-count", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var count struct {
		Count int64 `json:"count"`
	}
	decodeBody(t, resp, &count)
	assert.Equal(t, int64(1), count.Count)

	// Alice cannot mark bob's notification as read
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", notifs[0].ID), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", notifs[0].ID), bobToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/notifications/unread-count", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &count)
	assert.Equal(t, int64(0), count.Count)
}

func TestAdminPromotion(t *testing.T) {
	app, srv := newTestApp(t)
	adminToken, adminID := registerUser(t, app, "padmin")
	_, plebID := registerUser(t, app, "ppleb")

	// Non-admin cannot promote
	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/promote-admin", plebID), adminToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Bootstrap the first admin directly
	require.NoError(t, srv.db.Model(&models.User{}).
		Where("id = ?", adminID).
		Update("is_admin", true).Error)

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/promote-admin", plebID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var promoted models.User
	decodeBody(t, resp, &promoted)
	assert.True(t, promoted.IsAdmin)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/users/%d/promote-admin", plebID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &promoted)
	assert.False(t, promoted.IsAdmin)
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Status string `json:"status"`
		Checks struct {
			Database string `json:"database"`
			Redis    string `json:"redis"`
		} `json:"checks"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks.Database)
	assert.Equal(t, "unavailable", body.Checks.Redis)
}

func TestParseIDRejectsGarbage(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/questions/not-a-number", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/questions/-4", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
