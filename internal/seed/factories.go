// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"stackit/internal/models"
	"stackit/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// backdate spreads created_at over the configured window so listings look lived-in.
func (f *Factory) backdate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(
		-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateQuestion constructs and persists a question authored by the given user,
// attached to the provided tags.
func (f *Factory) CreateQuestion(author *models.User, tags []models.Tag, overrides ...func(*models.Question)) (*models.Question, error) {
	title := questionTitle(f.rng)
	question := &models.Question{
		Title:     title,
		Content:   gofakeit.Paragraph(2, 4, 8, "\n\n"),
		Slug:      fmt.Sprintf("%s-%d", validation.Slugify(title), gofakeit.Number(1000, 9999)),
		AuthorID:  author.ID,
		Views:     f.rng.Intn(500),
		CreatedAt: f.backdate(),
	}

	for _, override := range overrides {
		override(question)
	}

	if err := f.db.Create(question).Error; err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := f.db.Model(question).Association("Tags").Append(tags); err != nil {
			return nil, err
		}
	}
	return question, nil
}

// CreateAnswer persists an answer (or a reply when parentID is set) on a question.
func (f *Factory) CreateAnswer(author *models.User, questionID uint, parentID *uint) (*models.Answer, error) {
	answer := &models.Answer{
		Content:    gofakeit.Paragraph(1, 3, 8, "\n"),
		QuestionID: questionID,
		ParentID:   parentID,
		AuthorID:   author.ID,
		CreatedAt:  f.backdate(),
	}
	if err := f.db.Create(answer).Error; err != nil {
		return nil, err
	}
	return answer, nil
}

// EnsureTags creates the named tags if they do not already exist.
func (f *Factory) EnsureTags(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		err := f.db.Where(models.Tag{Name: name}).
			Attrs(models.Tag{Color: tagColors[f.rng.Intn(len(tagColors))]}).
			FirstOrCreate(&tag).Error
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

var tagColors = []string{
	"#007bff", "#6610f2", "#6f42c1", "#e83e8c", "#dc3545",
	"#fd7e14", "#ffc107", "#28a745", "#20c997", "#17a2b8",
}

var questionOpeners = []string{
	"How do I",
	"What is the idiomatic way to",
	"Why does",
	"When should I",
	"What is the difference between approaches to",
	"Is there a safe way to",
	"How can I debug",
	"What are the tradeoffs when I",
}

var questionTopics = []string{
	"handle database transactions across services",
	"structure configuration for multiple environments",
	"cancel goroutines cleanly on shutdown",
	"paginate large result sets efficiently",
	"cache expensive queries without staleness bugs",
	"validate nested JSON request bodies",
	"retry failed HTTP calls with backoff",
	"model many-to-many relations with extra columns",
	"keep WebSocket connections alive behind a proxy",
	"rate limit per user instead of per IP",
	"version a public REST API",
	"test code that depends on the system clock",
}

func questionTitle(r *rand.Rand) string {
	return fmt.Sprintf("%s %s?",
		questionOpeners[r.Intn(len(questionOpeners))],
		questionTopics[r.Intn(len(questionTopics))])
}
