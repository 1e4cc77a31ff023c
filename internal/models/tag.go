package models

import (
	"time"
)

// Tag categorizes questions. Tags are created on first use when a
// question references an unknown name.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"unique;not null;index" json:"name"`
	Color string `gorm:"not null;default:'#007bff'" json:"color"`

	// QuestionCount and FollowerCount are computed at query time
	QuestionCount int `gorm:"->;-:migration" json:"question_count"`
	FollowerCount int `gorm:"->;-:migration" json:"follower_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
