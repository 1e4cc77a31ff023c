package repository

import (
	"context"
	"errors"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// AnswerRepository defines persistence operations for answers and replies.
type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Answer, error)
	ListByQuestion(ctx context.Context, questionID uint, viewerID uint) ([]*models.Answer, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Answer, error)
	Update(ctx context.Context, answer *models.Answer) error
	Delete(ctx context.Context, id uint) error
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository returns a new AnswerRepository implementation.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

// applyAnswerDetails computes the viewer's live vote in the same query.
func (r *answerRepository) applyAnswerDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	if viewerID != 0 {
		return db.Select("answers.*, "+
			"(SELECT type FROM answer_votes WHERE answer_votes.answer_id = answers.id AND answer_votes.user_id = ?) as viewer_vote",
			viewerID)
	}
	return db.Select("answers.*, '' as viewer_vote")
}

func (r *answerRepository) Create(ctx context.Context, answer *models.Answer) error {
	if err := r.db.WithContext(ctx).Create(answer).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateQuestion(ctx, answer.QuestionID)
	return nil
}

func (r *answerRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Answer, error) {
	var answer models.Answer
	if err := r.applyAnswerDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		First(&answer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Answer", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &answer, nil
}

// ListByQuestion returns every answer and reply under the question as a flat
// list in creation order. The service assembles the reply tree.
func (r *answerRepository) ListByQuestion(ctx context.Context, questionID uint, viewerID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	if err := r.applyAnswerDetails(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Where("question_id = ?", questionID).
		Order("created_at ASC, id ASC").
		Find(&answers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return answers, nil
}

func (r *answerRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Answer, error) {
	limit, offset = clampPage(limit, offset)
	var answers []*models.Answer
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&answers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return answers, nil
}

func (r *answerRepository) Update(ctx context.Context, answer *models.Answer) error {
	if err := r.db.WithContext(ctx).Save(answer).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateQuestion(ctx, answer.QuestionID)
	return nil
}

// Delete removes the answer, its reply subtree and every dependent row in
// one transaction. A question that had this answer accepted reverts to
// unresolved.
func (r *answerRepository) Delete(ctx context.Context, id uint) error {
	var questionID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var answer models.Answer
		if err := tx.First(&answer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Answer", id)
			}
			return err
		}
		questionID = answer.QuestionID

		// Collect the reply subtree.
		ids := []uint{id}
		frontier := []uint{id}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&models.Answer{}).Where("parent_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		if err := tx.Where("answer_id IN ?", ids).Delete(&models.AnswerVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id IN ?", ids).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id IN ?", ids).Delete(&models.ReputationEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Question{}).
			Where("accepted_answer_id IN ?", ids).
			Updates(map[string]interface{}{
				"accepted_answer_id": nil,
				"is_resolved":        false,
			}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Answer{}).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateQuestion(ctx, questionID)
	return nil
}
