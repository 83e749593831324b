package models

import (
	"time"

	"gorm.io/gorm"
)

// Task is a staff-created unit of work addressing a feedback item. Its
// FeedbackID is fixed at creation. A task owns at most one changelog entry
// and cannot be deleted while that entry exists.
type Task struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:backlog;index" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:medium" json:"priority"`
	CreatorID   uint         `gorm:"not null" json:"creator_id"`
	Creator     User         `gorm:"foreignKey:CreatorID" json:"creator"`
	AssigneeID  *uint        `gorm:"index" json:"assignee_id,omitempty"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	FeedbackID  uint         `gorm:"not null;index" json:"feedback_id"`
	Feedback    Feedback     `gorm:"foreignKey:FeedbackID" json:"feedback"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
