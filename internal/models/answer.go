package models

import (
	"time"
)

// Answer represents an answer to a question, or a reply to another
// answer when ParentID is set. Replies form a tree of unbounded depth in
// storage; fetch assembles it with a depth guard.
type Answer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Content    string `gorm:"type:text;not null" json:"content"`
	VoteCount  int    `gorm:"not null;default:0;index" json:"vote_count"`
	IsAccepted bool   `gorm:"not null;default:false;index" json:"is_accepted"`
	ParentID   *uint  `gorm:"index" json:"parent_id,omitempty"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	AuthorID   uint   `gorm:"not null;index" json:"author_id"`
	Author     User   `gorm:"foreignKey:AuthorID" json:"author"`

	// ViewerVote is the requesting user's live vote on this answer
	// ("UP", "DOWN" or empty), computed at query time.
	ViewerVote string `gorm:"->;-:migration" json:"viewer_vote,omitempty"`
	// Replies is the assembled child subtree; not persisted.
	Replies []*Answer `gorm:"-" json:"replies,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
