package service

import (
	"context"
	"strings"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/repository"
	"stackit/internal/validation"
)

const (
	maxQuestionLen  = 30000
	maxTagsPerQuest = 5
)

// QuestionService provides question CRUD, listing and search.
type QuestionService struct {
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	tagRepo      repository.TagRepository
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
}

// AskQuestionInput is the input for posting a question.
type AskQuestionInput struct {
	UserID  uint
	Title   string
	Content string
	Tags    []string
}

// UpdateQuestionInput is the input for editing a question.
type UpdateQuestionInput struct {
	UserID     uint
	QuestionID uint
	Title      string
	Content    string
	Tags       []string
}

// NewQuestionService returns a new QuestionService.
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	tagRepo repository.TagRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		tagRepo:      tagRepo,
		isAdmin:      isAdmin,
	}
}

// normalizeTags lowercases, trims and validates the requested tag names.
func normalizeTags(names []string) ([]string, error) {
	if len(names) > maxTagsPerQuest {
		return nil, models.NewValidationError("A question can have at most 5 tags")
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if err := validation.ValidateTagName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		out = append(out, name)
	}
	return out, nil
}

// AskQuestion validates and persists a new question with its tags. Unknown
// tag names are created on the fly.
func (s *QuestionService) AskQuestion(ctx context.Context, in AskQuestionInput) (*models.Question, error) {
	if err := validation.ValidateQuestionTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxQuestionLen {
		return nil, models.NewValidationError("Content too long (max 30000 characters)")
	}

	names, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagRepo.EnsureAll(ctx, names)
	if err != nil {
		return nil, err
	}

	question := &models.Question{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: in.UserID,
	}
	if err := s.questionRepo.Create(ctx, question, tags); err != nil {
		return nil, err
	}

	return s.questionRepo.GetByID(ctx, question.ID, in.UserID)
}

// GetQuestion fetches a question with its assembled answer tree and bumps
// the view counter. Every fetch counts a view; there is no per-viewer dedup.
func (s *QuestionService) GetQuestion(ctx context.Context, id, viewerID uint) (*models.Question, error) {
	if err := s.questionRepo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	flat, err := s.answerRepo.ListByQuestion(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	question.Answers = buildReplyTree(flat)
	return question, nil
}

// GetQuestionBySlug resolves a question by its URL slug and bumps the view
// counter, same as a fetch by id. The answer tree is served separately.
func (s *QuestionService) GetQuestionBySlug(ctx context.Context, slug string, viewerID uint) (*models.Question, error) {
	question, err := s.questionRepo.GetBySlug(ctx, slug, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.questionRepo.IncrementViews(ctx, question.ID); err != nil {
		return nil, err
	}
	question.Views++
	return question, nil
}

// ListQuestions returns a filtered, sorted, paginated page plus the total.
func (s *QuestionService) ListQuestions(ctx context.Context, opts repository.QuestionListOptions) ([]*models.Question, int64, error) {
	switch opts.Sort {
	case "", models.QuestionSortNewest, models.QuestionSortVotes, models.QuestionSortViews:
	default:
		return nil, 0, models.NewValidationError("Sort must be one of newest, votes, views")
	}
	return s.questionRepo.List(ctx, opts)
}

// UpdateQuestion edits a question's title, content or tags. Authors only.
func (s *QuestionService) UpdateQuestion(ctx context.Context, in UpdateQuestionInput) (*models.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, in.QuestionID, 0)
	if err != nil {
		return nil, err
	}
	if question.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own questions")
	}

	if in.Title != "" {
		if err := validation.ValidateQuestionTitle(in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		question.Title = in.Title
	}
	if in.Content != "" {
		if len(in.Content) > maxQuestionLen {
			return nil, models.NewValidationError("Content too long (max 30000 characters)")
		}
		question.Content = in.Content
	}
	if in.Tags != nil {
		names, err := normalizeTags(in.Tags)
		if err != nil {
			return nil, err
		}
		tags, err := s.tagRepo.EnsureAll(ctx, names)
		if err != nil {
			return nil, err
		}
		question.Tags = tags
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, err
	}
	return s.questionRepo.GetByID(ctx, in.QuestionID, in.UserID)
}

// DeleteQuestion removes a question and everything under it. Authors may
// delete their own; admins may delete any.
func (s *QuestionService) DeleteQuestion(ctx context.Context, actorID, questionID uint) error {
	question, err := s.questionRepo.GetByID(ctx, questionID, 0)
	if err != nil {
		return err
	}

	if question.AuthorID != actorID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own questions")
		}
		admin, err := s.isAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own questions")
		}
	}

	if err := s.questionRepo.Delete(ctx, questionID); err != nil {
		return err
	}
	cache.InvalidateQuestion(ctx, questionID)
	return nil
}

// ListTags returns all tags with usage and follower counts.
func (s *QuestionService) ListTags(ctx context.Context, limit, offset int) ([]models.Tag, error) {
	return s.tagRepo.List(ctx, limit, offset)
}
