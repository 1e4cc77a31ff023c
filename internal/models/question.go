package models

import (
	"time"
)

// Question represents an asked question.
type Question struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null;index" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	Slug    string `gorm:"unique;not null;index" json:"slug"`
	// Views and VoteCount are denormalized counters, mutated only with
	// atomic increments (vote_count = vote_count + ?).
	Views            int   `gorm:"not null;default:0;index" json:"views"`
	VoteCount        int   `gorm:"not null;default:0;index" json:"vote_count"`
	IsResolved       bool  `gorm:"not null;default:false;index" json:"is_resolved"`
	AcceptedAnswerID *uint `json:"accepted_answer_id,omitempty"`
	AuthorID         uint  `gorm:"not null;index" json:"author_id"`
	Author           User  `gorm:"foreignKey:AuthorID" json:"author"`
	Tags             []Tag `gorm:"many2many:question_tags;" json:"tags"`

	// AnswerCount is computed at query time
	AnswerCount int `gorm:"->;-:migration" json:"answer_count"`
	// ViewerVote is the requesting user's live vote on this question
	// ("UP", "DOWN" or empty), computed at query time.
	ViewerVote string `gorm:"->;-:migration" json:"viewer_vote,omitempty"`
	// Answers holds the assembled reply tree on detail responses only.
	Answers []*Answer `gorm:"-" json:"answers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuestionTag is the join row between questions and tags.
type QuestionTag struct {
	QuestionID uint      `gorm:"primaryKey" json:"question_id"`
	TagID      uint      `gorm:"primaryKey" json:"tag_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Question sort keys accepted by the listing endpoint.
const (
	QuestionSortNewest = "newest"
	QuestionSortVotes  = "votes"
	QuestionSortViews  = "views"
)
