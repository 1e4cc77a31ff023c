package models

import (
	"time"
)

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationQuestionAnswered  NotificationType = "QUESTION_ANSWERED"
	NotificationAnswerAccepted    NotificationType = "ANSWER_ACCEPTED"
	NotificationUserFollowed      NotificationType = "USER_FOLLOWED"
	NotificationQuestionUpvoted   NotificationType = "QUESTION_UPVOTED"
	NotificationQuestionDownvoted NotificationType = "QUESTION_DOWNVOTED"
	NotificationAnswerUpvoted     NotificationType = "ANSWER_UPVOTED"
	NotificationAnswerDownvoted   NotificationType = "ANSWER_DOWNVOTED"
)

// Notification is a fire-and-forget event record surfaced to a user.
type Notification struct {
	ID      uint             `gorm:"primaryKey" json:"id"`
	Type    NotificationType `gorm:"not null" json:"type"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `gorm:"type:text;not null" json:"message"`
	IsRead  bool             `gorm:"not null;default:false;index" json:"is_read"`
	UserID  uint             `gorm:"not null;index" json:"user_id"`

	// Optional back-references to the triggering content.
	QuestionID *uint `json:"question_id,omitempty"`
	AnswerID   *uint `json:"answer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
