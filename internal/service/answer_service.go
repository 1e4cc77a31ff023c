package service

import (
	"context"
	"fmt"
	"sort"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/repository"

	"gorm.io/gorm"
)

// Replies nested deeper than this surface at the top level of the tree
// rather than recursing further.
const maxReplyDepth = 8

const maxAnswerLen = 30000

// AnswerService provides answer, reply and acceptance business logic.
// It holds the database handle for the acceptance transition, which must
// update the answer row, its siblings and the question atomically.
type AnswerService struct {
	answerRepo       repository.AnswerRepository
	questionRepo     repository.QuestionRepository
	notificationRepo repository.NotificationRepository
	db               *gorm.DB
	publisher        Publisher
	isAdmin          func(ctx context.Context, userID uint) (bool, error)
}

// PostAnswerInput is the input for answering a question.
type PostAnswerInput struct {
	UserID     uint
	QuestionID uint
	Content    string
}

// PostReplyInput is the input for replying to an existing answer.
type PostReplyInput struct {
	UserID   uint
	ParentID uint
	Content  string
}

// NewAnswerService returns a new AnswerService.
func NewAnswerService(
	answerRepo repository.AnswerRepository,
	questionRepo repository.QuestionRepository,
	notificationRepo repository.NotificationRepository,
	db *gorm.DB,
	publisher Publisher,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *AnswerService {
	return &AnswerService{
		answerRepo:       answerRepo,
		questionRepo:     questionRepo,
		notificationRepo: notificationRepo,
		db:               db,
		publisher:        publisher,
		isAdmin:          isAdmin,
	}
}

func validateAnswerContent(content string) error {
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxAnswerLen {
		return models.NewValidationError("Content too long (max 30000 characters)")
	}
	return nil
}

// PostAnswer creates a top-level answer and notifies the question author.
func (s *AnswerService) PostAnswer(ctx context.Context, in PostAnswerInput) (*models.Answer, error) {
	if err := validateAnswerContent(in.Content); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(ctx, in.QuestionID, 0)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{
		Content:    in.Content,
		QuestionID: in.QuestionID,
		AuthorID:   in.UserID,
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return nil, err
	}

	if question.AuthorID != in.UserID {
		emitNotification(ctx, s.notificationRepo, s.publisher, &models.Notification{
			Type:       models.NotificationQuestionAnswered,
			Title:      "New answer",
			Message:    fmt.Sprintf("Your question %q has a new answer", question.Title),
			UserID:     question.AuthorID,
			QuestionID: &question.ID,
			AnswerID:   &answer.ID,
		})
	}

	return s.answerRepo.GetByID(ctx, answer.ID, in.UserID)
}

// PostReply creates a nested reply under an existing answer. The reply's
// question is resolved from the parent; replies never notify.
func (s *AnswerService) PostReply(ctx context.Context, in PostReplyInput) (*models.Answer, error) {
	if err := validateAnswerContent(in.Content); err != nil {
		return nil, err
	}

	parent, err := s.answerRepo.GetByID(ctx, in.ParentID, 0)
	if err != nil {
		return nil, err
	}

	reply := &models.Answer{
		Content:    in.Content,
		QuestionID: parent.QuestionID,
		ParentID:   &parent.ID,
		AuthorID:   in.UserID,
	}
	if err := s.answerRepo.Create(ctx, reply); err != nil {
		return nil, err
	}

	return s.answerRepo.GetByID(ctx, reply.ID, in.UserID)
}

// AcceptAnswer marks an answer as the question's chosen solution. Only the
// question author may accept. Moving the acceptance clears the previous
// pick; the answer author's one-time bonus applies only when the pointer
// actually moves to this answer.
func (s *AnswerService) AcceptAnswer(ctx context.Context, actorID, answerID uint) (*models.Answer, error) {
	answer, err := s.answerRepo.GetByID(ctx, answerID, 0)
	if err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(ctx, answer.QuestionID, 0)
	if err != nil {
		return nil, err
	}
	if question.AuthorID != actorID {
		return nil, models.NewForbiddenError("Only the question author can accept an answer")
	}

	alreadyAccepted := question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == answer.ID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Answer{}).
			Where("question_id = ? AND id <> ?", question.ID, answer.ID).
			Where("is_accepted = ?", true).
			UpdateColumn("is_accepted", false).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Answer{}).Where("id = ?", answer.ID).
			UpdateColumn("is_accepted", true).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Question{}).Where("id = ?", question.ID).
			UpdateColumns(map[string]interface{}{
				"is_resolved":        true,
				"accepted_answer_id": answer.ID,
			}).Error; err != nil {
			return models.NewInternalError(err)
		}

		if !alreadyAccepted {
			if err := adjustReputation(tx, answer.AuthorID, models.ReputationAcceptedBonus,
				models.ReputationAnswerAccepted, &question.ID, &answer.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateQuestion(ctx, question.ID)
	cache.InvalidateUser(ctx, answer.AuthorID)

	if !alreadyAccepted && answer.AuthorID != actorID {
		emitNotification(ctx, s.notificationRepo, s.publisher, &models.Notification{
			Type:       models.NotificationAnswerAccepted,
			Title:      "Answer accepted",
			Message:    fmt.Sprintf("Your answer to %q was accepted", question.Title),
			UserID:     answer.AuthorID,
			QuestionID: &question.ID,
			AnswerID:   &answer.ID,
		})
	}

	return s.answerRepo.GetByID(ctx, answer.ID, 0)
}

// UpdateAnswer edits an answer's content. Authors only.
func (s *AnswerService) UpdateAnswer(ctx context.Context, actorID, answerID uint, content string) (*models.Answer, error) {
	if err := validateAnswerContent(content); err != nil {
		return nil, err
	}

	answer, err := s.answerRepo.GetByID(ctx, answerID, 0)
	if err != nil {
		return nil, err
	}
	if answer.AuthorID != actorID {
		return nil, models.NewForbiddenError("You can only edit your own answers")
	}

	answer.Content = content
	if err := s.answerRepo.Update(ctx, answer); err != nil {
		return nil, err
	}
	return s.answerRepo.GetByID(ctx, answerID, actorID)
}

// DeleteAnswer removes an answer and its reply subtree. Authors may delete
// their own; admins may delete any.
func (s *AnswerService) DeleteAnswer(ctx context.Context, actorID, answerID uint) error {
	answer, err := s.answerRepo.GetByID(ctx, answerID, 0)
	if err != nil {
		return err
	}

	if answer.AuthorID != actorID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own answers")
		}
		admin, err := s.isAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own answers")
		}
	}

	if err := s.answerRepo.Delete(ctx, answerID); err != nil {
		return err
	}
	cache.InvalidateQuestion(ctx, answer.QuestionID)
	return nil
}

// ListAnswers returns the question's assembled reply tree.
func (s *AnswerService) ListAnswers(ctx context.Context, questionID, viewerID uint) ([]*models.Answer, error) {
	if _, err := s.questionRepo.GetByID(ctx, questionID, 0); err != nil {
		return nil, err
	}
	flat, err := s.answerRepo.ListByQuestion(ctx, questionID, viewerID)
	if err != nil {
		return nil, err
	}
	return buildReplyTree(flat), nil
}

// buildReplyTree assembles the flat creation-ordered answer list into a
// tree. A reply is always created after its parent, so a single pass sees
// every parent before its children. Replies past the depth guard, or whose
// parent row is gone, surface at the top level instead of being dropped.
func buildReplyTree(answers []*models.Answer) []*models.Answer {
	byID := make(map[uint]*models.Answer, len(answers))
	depth := make(map[uint]int, len(answers))
	roots := make([]*models.Answer, 0, len(answers))

	for _, a := range answers {
		byID[a.ID] = a
		if a.ParentID == nil {
			roots = append(roots, a)
			continue
		}
		parent, ok := byID[*a.ParentID]
		if !ok || depth[*a.ParentID] >= maxReplyDepth {
			roots = append(roots, a)
			continue
		}
		depth[a.ID] = depth[*a.ParentID] + 1
		parent.Replies = append(parent.Replies, a)
	}

	// Accepted answers lead, the rest read newest first. Replies keep
	// their creation order under each parent.
	sort.SliceStable(roots, func(i, j int) bool {
		if roots[i].IsAccepted != roots[j].IsAccepted {
			return roots[i].IsAccepted
		}
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})
	return roots
}
