package service

import (
	"context"
	"errors"
	"fmt"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/observability"
	"stackit/internal/repository"

	"gorm.io/gorm"
)

// VoteService implements the tri-state vote toggle for questions and
// answers. It holds the database handle directly: a cast touches the vote
// row, the target's counter and (for answers) the author's reputation in
// one transaction, which no single repository spans.
type VoteService struct {
	db               *gorm.DB
	notificationRepo repository.NotificationRepository
	publisher        Publisher
}

// NewVoteService returns a new VoteService.
func NewVoteService(
	db *gorm.DB,
	notificationRepo repository.NotificationRepository,
	publisher Publisher,
) *VoteService {
	return &VoteService{
		db:               db,
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Outcomes of a cast, used as metric labels and to pick side effects.
const (
	voteOutcomeCreated   = "created"
	voteOutcomeRetracted = "retracted"
	voteOutcomeFlipped   = "flipped"
)

// CastQuestionVote toggles the actor's vote on a question. Question votes
// adjust the question's counter only; they never touch author reputation.
func (s *VoteService) CastQuestionVote(
	ctx context.Context, actorID, questionID uint, voteType models.VoteType,
) (*models.VoteResult, error) {
	if !voteType.Valid() {
		return nil, models.NewValidationError("Vote type must be UP or DOWN")
	}

	var (
		result   models.VoteResult
		outcome  string
		question models.Question
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&question, questionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Question", questionID)
			}
			return models.NewInternalError(err)
		}

		var existing models.QuestionVote
		err := tx.Where("user_id = ? AND question_id = ?", actorID, questionID).
			First(&existing).Error

		var delta int
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.QuestionVote{UserID: actorID, QuestionID: questionID, Type: voteType}
			if err := tx.Create(&vote).Error; err != nil {
				return models.NewInternalError(err)
			}
			delta = voteType.Value()
			outcome = voteOutcomeCreated
			result.ViewerVote = string(voteType)

		case err != nil:
			return models.NewInternalError(err)

		case existing.Type == voteType:
			if err := tx.Delete(&existing).Error; err != nil {
				return models.NewInternalError(err)
			}
			delta = -voteType.Value()
			outcome = voteOutcomeRetracted
			result.ViewerVote = ""

		default:
			if err := tx.Model(&existing).Update("type", voteType).Error; err != nil {
				return models.NewInternalError(err)
			}
			delta = 2 * voteType.Value()
			outcome = voteOutcomeFlipped
			result.ViewerVote = string(voteType)
		}

		if err := tx.Model(&models.Question{}).Where("id = ?", questionID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", delta)).Error; err != nil {
			return models.NewInternalError(err)
		}

		var refreshed models.Question
		if err := tx.Select("vote_count").First(&refreshed, questionID).Error; err != nil {
			return models.NewInternalError(err)
		}
		result.VoteCount = refreshed.VoteCount
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateQuestion(ctx, questionID)
	observability.VotesCast.WithLabelValues("question", outcome).Inc()

	if outcome != voteOutcomeRetracted && question.AuthorID != actorID {
		s.notifyVote(ctx, question.AuthorID, voteType,
			models.NotificationQuestionUpvoted, models.NotificationQuestionDownvoted,
			fmt.Sprintf("Your question %q received a %s", question.Title, voteWord(voteType)),
			&questionID, nil)
	}

	return &result, nil
}

// CastAnswerVote toggles the actor's vote on an answer. The answer author's
// reputation moves with the counter delta times the per-vote rate, and every
// reputation change writes a ledger event in the same transaction.
func (s *VoteService) CastAnswerVote(
	ctx context.Context, actorID, answerID uint, voteType models.VoteType,
) (*models.VoteResult, error) {
	if !voteType.Valid() {
		return nil, models.NewValidationError("Vote type must be UP or DOWN")
	}

	var (
		result  models.VoteResult
		outcome string
		answer  models.Answer
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&answer, answerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Answer", answerID)
			}
			return models.NewInternalError(err)
		}

		var existing models.AnswerVote
		err := tx.Where("user_id = ? AND answer_id = ?", actorID, answerID).
			First(&existing).Error

		var (
			delta     int
			eventType models.ReputationEventType
		)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.AnswerVote{UserID: actorID, AnswerID: answerID, Type: voteType}
			if err := tx.Create(&vote).Error; err != nil {
				return models.NewInternalError(err)
			}
			delta = voteType.Value()
			eventType = models.ReputationAnswerVote
			outcome = voteOutcomeCreated
			result.ViewerVote = string(voteType)

		case err != nil:
			return models.NewInternalError(err)

		case existing.Type == voteType:
			if err := tx.Delete(&existing).Error; err != nil {
				return models.NewInternalError(err)
			}
			delta = -voteType.Value()
			eventType = models.ReputationVoteRetracted
			outcome = voteOutcomeRetracted
			result.ViewerVote = ""

		default:
			if err := tx.Model(&existing).Update("type", voteType).Error; err != nil {
				return models.NewInternalError(err)
			}
			delta = 2 * voteType.Value()
			eventType = models.ReputationVoteFlipped
			outcome = voteOutcomeFlipped
			result.ViewerVote = string(voteType)
		}

		if err := tx.Model(&models.Answer{}).Where("id = ?", answerID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", delta)).Error; err != nil {
			return models.NewInternalError(err)
		}

		if err := adjustReputation(tx, answer.AuthorID, delta*models.ReputationPerVote,
			eventType, &answer.QuestionID, &answerID); err != nil {
			return err
		}

		var refreshed models.Answer
		if err := tx.Select("vote_count").First(&refreshed, answerID).Error; err != nil {
			return models.NewInternalError(err)
		}
		result.VoteCount = refreshed.VoteCount
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateQuestion(ctx, answer.QuestionID)
	cache.InvalidateUser(ctx, answer.AuthorID)
	observability.VotesCast.WithLabelValues("answer", outcome).Inc()

	if outcome != voteOutcomeRetracted && answer.AuthorID != actorID {
		s.notifyVote(ctx, answer.AuthorID, voteType,
			models.NotificationAnswerUpvoted, models.NotificationAnswerDownvoted,
			fmt.Sprintf("Your answer received a %s", voteWord(voteType)),
			&answer.QuestionID, &answerID)
	}

	return &result, nil
}

// adjustReputation applies an atomic reputation increment and records the
// matching ledger event with the balance it produced. Must run inside the
// transaction that caused the change.
func adjustReputation(
	tx *gorm.DB, userID uint, amount int,
	eventType models.ReputationEventType, questionID, answerID *uint,
) error {
	if amount == 0 {
		return nil
	}
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("reputation", gorm.Expr("reputation + ?", amount)).Error; err != nil {
		return models.NewInternalError(err)
	}

	var user models.User
	if err := tx.Select("reputation").First(&user, userID).Error; err != nil {
		return models.NewInternalError(err)
	}

	event := models.ReputationEvent{
		UserID:       userID,
		Type:         eventType,
		Amount:       amount,
		BalanceAfter: user.Reputation,
		QuestionID:   questionID,
		AnswerID:     answerID,
	}
	if err := tx.Create(&event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *VoteService) notifyVote(
	ctx context.Context, ownerID uint, voteType models.VoteType,
	upType, downType models.NotificationType, message string,
	questionID, answerID *uint,
) {
	notifType := upType
	title := "New upvote"
	if voteType == models.VoteDown {
		notifType = downType
		title = "New downvote"
	}
	emitNotification(ctx, s.notificationRepo, s.publisher, &models.Notification{
		Type:       notifType,
		Title:      title,
		Message:    message,
		UserID:     ownerID,
		QuestionID: questionID,
		AnswerID:   answerID,
	})
}

func voteWord(t models.VoteType) string {
	if t == models.VoteDown {
		return "downvote"
	}
	return "upvote"
}
