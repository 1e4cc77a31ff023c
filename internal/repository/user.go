package repository

import (
	"context"
	"errors"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	ListReputationEvents(ctx context.Context, userID uint, limit, offset int) ([]models.ReputationEvent, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// userDetailSelect computes the follow and content counters in one query.
const userDetailSelect = "users.*, " +
	"(SELECT COUNT(*) FROM user_follows WHERE user_follows.followee_id = users.id) as follower_count, " +
	"(SELECT COUNT(*) FROM user_follows WHERE user_follows.follower_id = users.id) as following_count, " +
	"(SELECT COUNT(*) FROM questions WHERE questions.author_id = users.id) as question_count, " +
	"(SELECT COUNT(*) FROM answers WHERE answers.author_id = users.id) as answer_count"

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).
			Select(userDetailSelect).
			First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Delete removes the user and everything they own in one transaction:
// questions (with every answer under them), the user's answers elsewhere
// plus their reply subtrees, all vote rows, follow edges, notifications
// and reputation events touching the deleted content. Questions by other
// authors whose accepted answer disappears are reset to unresolved.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&models.Question{}).Where("author_id = ?", id).
			Pluck("id", &questionIDs).Error; err != nil {
			return err
		}

		// Seed: the user's own answers plus all answers under their questions.
		var answerIDs []uint
		q := tx.Model(&models.Answer{}).Where("author_id = ?", id)
		if len(questionIDs) > 0 {
			q = tx.Model(&models.Answer{}).
				Where("author_id = ? OR question_id IN ?", id, questionIDs)
		}
		if err := q.Pluck("id", &answerIDs).Error; err != nil {
			return err
		}

		// Expand to reply subtrees rooted at any doomed answer.
		frontier := answerIDs
		known := make(map[uint]struct{}, len(answerIDs))
		for _, aid := range answerIDs {
			known[aid] = struct{}{}
		}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&models.Answer{}).Where("parent_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			frontier = frontier[:0]
			for _, cid := range children {
				if _, ok := known[cid]; !ok {
					known[cid] = struct{}{}
					answerIDs = append(answerIDs, cid)
					frontier = append(frontier, cid)
				}
			}
		}

		if len(answerIDs) > 0 {
			if err := tx.Where("answer_id IN ? OR user_id = ?", answerIDs, id).
				Delete(&models.AnswerVote{}).Error; err != nil {
				return err
			}
		} else if err := tx.Where("user_id = ?", id).Delete(&models.AnswerVote{}).Error; err != nil {
			return err
		}

		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ? OR user_id = ?", questionIDs, id).
				Delete(&models.QuestionVote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("question_id IN ?", questionIDs).
				Delete(&models.QuestionTag{}).Error; err != nil {
				return err
			}
		} else if err := tx.Where("user_id = ?", id).Delete(&models.QuestionVote{}).Error; err != nil {
			return err
		}

		notifQ := tx.Where("user_id = ?", id)
		if len(questionIDs) > 0 {
			notifQ = notifQ.Or("question_id IN ?", questionIDs)
		}
		if len(answerIDs) > 0 {
			notifQ = notifQ.Or("answer_id IN ?", answerIDs)
		}
		if err := notifQ.Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		repQ := tx.Where("user_id = ?", id)
		if len(questionIDs) > 0 {
			repQ = repQ.Or("question_id IN ?", questionIDs)
		}
		if len(answerIDs) > 0 {
			repQ = repQ.Or("answer_id IN ?", answerIDs)
		}
		if err := repQ.Delete(&models.ReputationEvent{}).Error; err != nil {
			return err
		}

		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).
			Delete(&models.UserFollow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.TagFollow{}).Error; err != nil {
			return err
		}

		if len(answerIDs) > 0 {
			// Surviving questions pointing at a doomed accepted answer revert to unresolved.
			if err := tx.Model(&models.Question{}).
				Where("accepted_answer_id IN ?", answerIDs).
				Updates(map[string]interface{}{
					"accepted_answer_id": nil,
					"is_resolved":        false,
				}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", answerIDs).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
		}

		if len(questionIDs) > 0 {
			if err := tx.Where("id IN ?", questionIDs).Delete(&models.Question{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	limit, offset = clampPage(limit, offset)
	var users []models.User
	if err := r.db.WithContext(ctx).
		Select(userDetailSelect).
		Order("reputation DESC, id ASC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) ListReputationEvents(ctx context.Context, userID uint, limit, offset int) ([]models.ReputationEvent, error) {
	limit, offset = clampPage(limit, offset)
	var events []models.ReputationEvent
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}
