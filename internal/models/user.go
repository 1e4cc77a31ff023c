package models

import (
	"time"
)

// User represents a registered member of the forum.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
	// Reputation is adjusted only through ReputationEvent writes; never
	// assigned directly outside that transaction.
	Reputation int  `gorm:"not null;default:0;index" json:"reputation"`
	IsAdmin    bool `gorm:"not null;default:false" json:"is_admin"`

	// FollowerCount and FollowingCount are computed at query time
	FollowerCount  int `gorm:"->;-:migration" json:"follower_count"`
	FollowingCount int `gorm:"->;-:migration" json:"following_count"`
	QuestionCount  int `gorm:"->;-:migration" json:"question_count"`
	AnswerCount    int `gorm:"->;-:migration" json:"answer_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser is the embedded author shape returned inside questions and answers.
type PublicUser struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
	Reputation int    `json:"reputation"`
}

// Public strips credential and mutable profile fields for embedding.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Avatar:     u.Avatar,
		Reputation: u.Reputation,
	}
}
