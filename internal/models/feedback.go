package models

import (
	"time"

	"gorm.io/gorm"
)

// Feedback is a user-submitted item under a topic and the root of the
// task/changelog workflow. It exclusively owns its comments and upvotes;
// deleting a feedback removes those first, in that order. Tasks hold a
// non-owning reference back to the feedback and block its deletion.
type Feedback struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Status      FeedbackStatus `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user"`
	TopicID     uint           `gorm:"not null;index" json:"topic_id"`
	Topic       Topic          `gorm:"foreignKey:TopicID" json:"topic"`
	// UpvotesCount is not persisted; computed at query time
	UpvotesCount int `gorm:"->" json:"upvotes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Upvoted indicates whether the current requesting user upvoted this feedback (computed)
	Upvoted   bool           `gorm:"->" json:"upvoted"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
