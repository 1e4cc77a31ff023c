// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"

	"stackit/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	NumQuestions int
	ShouldClean  bool
	// MaxDays is how far back created_at timestamps are spread.
	MaxDays int
	// SkipBcrypt stores a plaintext marker password instead of a real hash.
	// Much faster for large seeds; dev only.
	SkipBcrypt bool
}

var defaultTags = []string{
	"go", "databases", "web-dev", "testing", "concurrency",
	"docker", "networking", "security", "performance", "tooling",
	"apis", "caching", "debugging", "linux", "architecture",
}

// Seed populates the database with a plausible forum: users, tagged
// questions, threaded answers, votes, follows and the reputation rows the
// votes imply.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users and %d questions...", opts.NumUsers, opts.NumQuestions)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("warning: could not clear all existing data, continuing anyway")
		}
	}

	f := NewFactory(db, opts)

	tags, err := f.EnsureTags(defaultTags)
	if err != nil {
		return fmt.Errorf("failed to create tags: %w", err)
	}
	log.Printf("%d tags available", len(tags))

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("%d users created", len(users))

	questions := make([]*models.Question, 0, opts.NumQuestions)
	for i := 0; i < opts.NumQuestions; i++ {
		author := users[f.rng.Intn(len(users))]
		qTags := pickTags(f.rng, tags)
		question, err := f.CreateQuestion(author, qTags)
		if err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		questions = append(questions, question)
	}
	log.Printf("%d questions created", len(questions))

	answered, err := seedAnswers(f, users, questions)
	if err != nil {
		return fmt.Errorf("failed to create answers: %w", err)
	}
	log.Printf("%d answers created", answered)

	if err := seedVotes(f, users, questions); err != nil {
		return fmt.Errorf("failed to create votes: %w", err)
	}

	if err := seedFollows(f, users, tags); err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}

	log.Println("Seeding complete")
	return nil
}

func pickTags(r *rand.Rand, tags []models.Tag) []models.Tag {
	n := 1 + r.Intn(3)
	picked := make([]models.Tag, 0, n)
	seen := map[uint]bool{}
	for len(picked) < n {
		t := tags[r.Intn(len(tags))]
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		picked = append(picked, t)
	}
	return picked
}

// seedAnswers gives most questions a few answers, some answers a reply
// thread, and accepts an answer on roughly a third of questions.
func seedAnswers(f *Factory, users []*models.User, questions []*models.Question) (int, error) {
	total := 0
	for _, q := range questions {
		numAnswers := f.rng.Intn(4)
		var answerIDs []uint
		for i := 0; i < numAnswers; i++ {
			author := users[f.rng.Intn(len(users))]
			answer, err := f.CreateAnswer(author, q.ID, nil)
			if err != nil {
				return total, err
			}
			answerIDs = append(answerIDs, answer.ID)
			total++

			// occasional reply thread under the answer
			if f.rng.Intn(3) == 0 {
				replier := users[f.rng.Intn(len(users))]
				if _, err := f.CreateAnswer(replier, q.ID, &answer.ID); err != nil {
					return total, err
				}
				total++
			}
		}

		if len(answerIDs) > 0 && f.rng.Intn(3) == 0 {
			acceptedID := answerIDs[f.rng.Intn(len(answerIDs))]
			if err := acceptSeededAnswer(f.db, q.ID, acceptedID); err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

func acceptSeededAnswer(db *gorm.DB, questionID, answerID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Answer{}).
			Where("id = ?", answerID).
			Update("is_accepted", true).Error; err != nil {
			return err
		}
		var answer models.Answer
		if err := tx.Select("author_id").First(&answer, answerID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Question{}).
			Where("id = ?", questionID).
			Updates(map[string]interface{}{
				"is_resolved":        true,
				"accepted_answer_id": answerID,
			}).Error; err != nil {
			return err
		}
		return grantReputation(tx, answer.AuthorID,
			models.ReputationAcceptedBonus, models.ReputationAnswerAccepted,
			&questionID, &answerID)
	})
}

// seedVotes casts question votes for a random fan-in per question. Answer
// votes are skipped here: their reputation side effects make them better
// exercised through the API than faked in bulk.
func seedVotes(f *Factory, users []*models.User, questions []*models.Question) error {
	for _, q := range questions {
		numVotes := f.rng.Intn(6)
		voters := f.rng.Perm(len(users))
		for i := 0; i < numVotes && i < len(voters); i++ {
			voteType := models.VoteUp
			if f.rng.Intn(5) == 0 {
				voteType = models.VoteDown
			}
			vote := models.QuestionVote{
				UserID:     users[voters[i]].ID,
				QuestionID: q.ID,
				Type:       voteType,
			}
			if err := f.db.Create(&vote).Error; err != nil {
				return err
			}
			if err := f.db.Model(&models.Question{}).
				Where("id = ?", q.ID).
				UpdateColumn("vote_count", gorm.Expr("vote_count + ?", voteType.Value())).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedFollows(f *Factory, users []*models.User, tags []models.Tag) error {
	for _, u := range users {
		// follow a couple of other users
		targets := f.rng.Perm(len(users))
		followed := 0
		for _, idx := range targets {
			if followed >= 2 {
				break
			}
			if users[idx].ID == u.ID {
				continue
			}
			edge := models.UserFollow{FollowerID: u.ID, FolloweeID: users[idx].ID}
			if err := f.db.Create(&edge).Error; err != nil {
				return err
			}
			followed++
		}

		// and a couple of tags
		for _, idx := range f.rng.Perm(len(tags))[:2] {
			edge := models.TagFollow{UserID: u.ID, TagID: tags[idx].ID}
			if err := f.db.Create(&edge).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// grantReputation mirrors the ledger discipline of the live vote path:
// bump the counter, read it back, record the event with the new balance.
func grantReputation(tx *gorm.DB, userID uint, amount int, eventType models.ReputationEventType, questionID, answerID *uint) error {
	if err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("reputation", gorm.Expr("reputation + ?", amount)).Error; err != nil {
		return err
	}
	var user models.User
	if err := tx.Select("reputation").First(&user, userID).Error; err != nil {
		return err
	}
	event := models.ReputationEvent{
		UserID:       userID,
		Type:         eventType,
		Amount:       amount,
		BalanceAfter: user.Reputation,
		QuestionID:   questionID,
		AnswerID:     answerID,
	}
	return tx.Create(&event).Error
}

// clearData removes seedable rows in dependency order.
func clearData(db *gorm.DB) error {
	tables := []interface{}{
		&models.ReputationEvent{},
		&models.Notification{},
		&models.AnswerVote{},
		&models.QuestionVote{},
		&models.TagFollow{},
		&models.UserFollow{},
		&models.Answer{},
		&models.QuestionTag{},
		&models.Question{},
		&models.Tag{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}
