package models

import (
	"time"

	"gorm.io/gorm"
)

// Changelog is a published note describing a completed task. TaskID is
// unique (one entry per task) and FeedbackID is denormalized from the task
// at creation time so the changelog feed can be filtered without joining
// through tasks.
type Changelog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	TaskID      uint           `gorm:"not null;uniqueIndex" json:"task_id"`
	Task        Task           `gorm:"foreignKey:TaskID" json:"task"`
	FeedbackID  uint           `gorm:"not null;index" json:"feedback_id"`
	Feedback    Feedback       `gorm:"foreignKey:FeedbackID" json:"feedback"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
