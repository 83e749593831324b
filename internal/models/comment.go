package models

import "time"

// DeletedCommentMarker replaces the content of a comment that was removed
// while replies still referenced it. The row itself stays in place so the
// thread keeps its shape.
const DeletedCommentMarker = "_This comment has been deleted_"

// Comment is a threaded reply under a feedback item. ParentID forms the
// reply tree; at most one comment per feedback may carry IsAnswer at any
// time. Comments are not soft-deleted via gorm: a comment with replies is
// kept with its content replaced by DeletedCommentMarker, a childless one
// is physically removed.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	FeedbackID uint      `gorm:"not null;index" json:"feedback_id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user"`
	ParentID   *uint     `gorm:"index" json:"parent_id,omitempty"`
	IsAnswer   bool      `gorm:"not null;default:false" json:"is_answer"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Replies is populated by thread reconstruction, never by gorm.
	Replies []*Comment `gorm:"-" json:"replies,omitempty"`
}

// Deleted reports whether the comment was soft-removed, keeping the row
// only as an anchor for its replies.
func (c *Comment) Deleted() bool {
	return c.Content == DeletedCommentMarker
}
