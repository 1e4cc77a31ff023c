package models

import (
	"time"
)

// VoteType is the direction of a vote.
type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
)

// Valid reports whether t is a recognized vote direction.
func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

// Value returns the signed contribution of this vote to a vote count.
func (t VoteType) Value() int {
	if t == VoteDown {
		return -1
	}
	return 1
}

// QuestionVote is one user's live vote on a question.
// The (UserID, QuestionID) pair is unique: a user holds at most one.
type QuestionVote struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	UserID     uint     `gorm:"not null;uniqueIndex:idx_user_question_vote" json:"user_id"`
	QuestionID uint     `gorm:"not null;uniqueIndex:idx_user_question_vote" json:"question_id"`
	Type       VoteType `gorm:"not null" json:"type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnswerVote is one user's live vote on an answer.
// The (UserID, AnswerID) pair is unique: a user holds at most one.
type AnswerVote struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	UserID   uint     `gorm:"not null;uniqueIndex:idx_user_answer_vote" json:"user_id"`
	AnswerID uint     `gorm:"not null;uniqueIndex:idx_user_answer_vote" json:"answer_id"`
	Type     VoteType `gorm:"not null" json:"type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoteResult is returned after a cast: the target's new count and the
// actor's resulting vote state ("UP", "DOWN" or empty when retracted).
type VoteResult struct {
	VoteCount  int    `json:"vote_count"`
	ViewerVote string `json:"viewer_vote"`
}
