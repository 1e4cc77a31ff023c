package models

import (
	"time"
)

// ReputationEventType identifies why reputation changed.
type ReputationEventType string

const (
	ReputationAnswerVote     ReputationEventType = "answer_vote"
	ReputationVoteRetracted  ReputationEventType = "vote_retracted"
	ReputationVoteFlipped    ReputationEventType = "vote_flipped"
	ReputationAnswerAccepted ReputationEventType = "answer_accepted"
)

// Points granted per reputation-affecting action.
const (
	ReputationPerVote       = 10
	ReputationAcceptedBonus = 15
)

// ReputationEvent is one row of the reputation ledger. Every change to
// users.reputation writes an event in the same transaction, so the
// counter always equals the sum of its owner's event amounts.
type ReputationEvent struct {
	ID     uint                `gorm:"primaryKey" json:"id"`
	UserID uint                `gorm:"not null;index" json:"user_id"`
	Type   ReputationEventType `gorm:"not null;index" json:"type"`
	Amount int                 `gorm:"not null" json:"amount"`
	// BalanceAfter is the user's reputation after this event, for audit.
	BalanceAfter int `gorm:"not null" json:"balance_after"`

	QuestionID *uint `json:"question_id,omitempty"`
	AnswerID   *uint `json:"answer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
