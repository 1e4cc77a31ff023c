package repository

import (
	"context"
	"errors"
	"fmt"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/observability"
	"stackit/internal/validation"

	"gorm.io/gorm"
)

// QuestionListOptions narrows and orders a question listing.
type QuestionListOptions struct {
	Search   string
	Tag      string
	Sort     string
	AuthorID uint
	Limit    int
	Offset   int
	// ViewerID personalizes viewer_vote; zero means anonymous.
	ViewerID uint
}

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question, tags []models.Tag) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Question, error)
	GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Question, error)
	List(ctx context.Context, opts QuestionListOptions) ([]*models.Question, int64, error)
	IncrementViews(ctx context.Context, id uint) error
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
}

type questionRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewQuestionRepository returns a new QuestionRepository implementation.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

// applyQuestionDetails adds subqueries computing the answer count and the
// viewer's live vote in the same query.
func (r *questionRepository) applyQuestionDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "questions.*, " +
		"(SELECT COUNT(*) FROM answers WHERE answers.question_id = questions.id) as answer_count"

	if viewerID != 0 {
		return db.Select(selectQuery+
			", (SELECT type FROM question_votes WHERE question_votes.question_id = questions.id AND question_votes.user_id = ?) as viewer_vote",
			viewerID)
	}
	return db.Select(selectQuery + ", '' as viewer_vote")
}

// Create persists the question with a unique slug derived from the title and
// attaches the given tags. Slug collisions get a numeric suffix.
func (r *questionRepository) Create(ctx context.Context, question *models.Question, tags []models.Tag) error {
	base := validation.Slugify(question.Title)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug := base
		for i := 2; ; i++ {
			var count int64
			if err := tx.Model(&models.Question{}).Where("slug = ?", slug).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				break
			}
			slug = fmt.Sprintf("%s-%d", base, i)
		}
		question.Slug = slug
		question.Tags = tags

		return tx.Create(question).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A question with this title already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Question, error) {
	defer r.metrics.TrackQuery("get", "questions")()
	var question models.Question

	fetch := func() error {
		if err := r.applyQuestionDetails(r.db.WithContext(ctx), viewerID).
			Preload("Author").
			Preload("Tags").
			First(&question, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Question", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	}

	// Only the anonymous shape is cacheable; viewer_vote is personal.
	if viewerID == 0 {
		if err := cache.Aside(ctx, cache.QuestionKey(id), &question, cache.QuestionTTL, fetch); err != nil {
			return nil, err
		}
		return &question, nil
	}

	if err := fetch(); err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Question, error) {
	var question models.Question
	if err := r.applyQuestionDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Preload("Tags").
		Where("slug = ?", slug).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Question", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &question, nil
}

func (r *questionRepository) List(ctx context.Context, opts QuestionListOptions) ([]*models.Question, int64, error) {
	defer r.metrics.TrackQuery("list", "questions")()
	opts.Limit, opts.Offset = clampPage(opts.Limit, opts.Offset)

	applyFilters := func(db *gorm.DB) *gorm.DB {
		if opts.Search != "" {
			like := "%" + opts.Search + "%"
			// ILIKE is postgres-only; sqlite LIKE is already case-insensitive.
			op := "LIKE"
			if r.db.Dialector.Name() == "postgres" {
				op = "ILIKE"
			}
			db = db.Where(
				fmt.Sprintf("questions.title %s ? OR questions.content %s ?", op, op),
				like, like)
		}
		if opts.Tag != "" {
			db = db.
				Joins("JOIN question_tags ON question_tags.question_id = questions.id").
				Joins("JOIN tags ON tags.id = question_tags.tag_id").
				Where("tags.name = ?", opts.Tag)
		}
		if opts.AuthorID != 0 {
			db = db.Where("questions.author_id = ?", opts.AuthorID)
		}
		return db
	}

	var total int64
	if err := applyFilters(r.db.WithContext(ctx).Model(&models.Question{})).
		Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var questions []*models.Question
	query := r.applyQuestionDetails(applyFilters(r.db.WithContext(ctx).Model(&models.Question{})), opts.ViewerID).
		Preload("Author").
		Preload("Tags")

	switch opts.Sort {
	case models.QuestionSortVotes:
		query = query.Order("questions.vote_count DESC, questions.created_at DESC")
	case models.QuestionSortViews:
		query = query.Order("questions.views DESC, questions.created_at DESC")
	default: // newest
		query = query.Order("questions.created_at DESC")
	}

	if err := query.Limit(opts.Limit).Offset(opts.Offset).Find(&questions).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return questions, total, nil
}

// IncrementViews bumps the view counter atomically. Every fetch counts,
// repeat views by the same viewer included.
func (r *questionRepository) IncrementViews(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateQuestion(ctx, id)
	return nil
}

// Update persists the question's own columns and, when Tags is set,
// replaces the tag association wholesale.
func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Author").Save(question).Error; err != nil {
			return err
		}
		if question.Tags != nil {
			return tx.Model(question).Association("Tags").Replace(question.Tags)
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateQuestion(ctx, question.ID)
	return nil
}

// Delete removes the question and every dependent row in one transaction.
func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var answerIDs []uint
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", id).
			Pluck("id", &answerIDs).Error; err != nil {
			return err
		}

		if len(answerIDs) > 0 {
			if err := tx.Where("answer_id IN ?", answerIDs).
				Delete(&models.AnswerVote{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.ReputationEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Question{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateQuestion(ctx, id)
	return nil
}
