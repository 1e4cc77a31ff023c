package models

import (
	"time"
)

// UserFollow is a directed follow edge between two users.
// The (FollowerID, FolloweeID) pair is unique.
type UserFollow struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	FollowerID uint `gorm:"not null;uniqueIndex:idx_user_follow_edge" json:"follower_id"`
	FolloweeID uint `gorm:"not null;uniqueIndex:idx_user_follow_edge" json:"followee_id"`

	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followee User `gorm:"foreignKey:FolloweeID" json:"followee,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TagFollow subscribes a user to a tag.
// The (UserID, TagID) pair is unique.
type TagFollow struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_tag_follow_edge" json:"user_id"`
	TagID  uint `gorm:"not null;uniqueIndex:idx_tag_follow_edge" json:"tag_id"`

	Tag Tag `gorm:"foreignKey:TagID" json:"tag,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
