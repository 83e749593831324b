package models

import (
	"time"

	"gorm.io/gorm"
)

// Topic is a named category grouping feedback items. A topic can only be
// deleted while no feedback references it.
type Topic struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"unique;not null" json:"name"`
	Description string         `json:"description"`
	Color       string         `gorm:"not null;default:#0284c7" json:"color"`
	Icon        string         `json:"icon"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
