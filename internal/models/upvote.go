package models

import "time"

// Upvote records a user's vote on a feedback item.
// The combination of UserID and FeedbackID must be unique; re-submitting
// removes the existing row instead of creating a duplicate.
type Upvote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_feedback" json:"user_id"`
	FeedbackID uint      `gorm:"not null;uniqueIndex:idx_user_feedback" json:"feedback_id"`
	CreatedAt  time.Time `json:"created_at"`
}
