package repository

import (
	"context"

	"echoboard/internal/models"

	"gorm.io/gorm"
)

// ChangelogFilter narrows changelog listings.
type ChangelogFilter struct {
	FeedbackID uint
	TopicID    uint
}

// ChangelogRepository defines the interface for changelog data operations
type ChangelogRepository interface {
	Create(ctx context.Context, changelog *models.Changelog) error
	GetByID(ctx context.Context, id uint) (*models.Changelog, error)
	List(ctx context.Context, filter ChangelogFilter) ([]*models.Changelog, error)
	Update(ctx context.Context, changelog *models.Changelog) error
	Delete(ctx context.Context, id uint) error
}

type changelogRepository struct {
	db *gorm.DB
}

// NewChangelogRepository creates a new ChangelogRepository
func NewChangelogRepository(db *gorm.DB) ChangelogRepository {
	return &changelogRepository{db: db}
}

func (r *changelogRepository) Create(ctx context.Context, changelog *models.Changelog) error {
	return r.db.WithContext(ctx).Create(changelog).Error
}

func (r *changelogRepository) GetByID(ctx context.Context, id uint) (*models.Changelog, error) {
	var changelog models.Changelog
	err := r.db.WithContext(ctx).
		Preload("Task").
		Preload("Task.Creator").
		Preload("Feedback").
		Preload("Feedback.Topic").
		First(&changelog, id).Error
	if err != nil {
		return nil, err
	}
	return &changelog, nil
}

func (r *changelogRepository) List(ctx context.Context, filter ChangelogFilter) ([]*models.Changelog, error) {
	var changelogs []*models.Changelog
	q := r.db.WithContext(ctx).
		Preload("Task").
		Preload("Task.Creator").
		Preload("Feedback").
		Preload("Feedback.Topic")

	if filter.FeedbackID != 0 {
		q = q.Where("changelogs.feedback_id = ?", filter.FeedbackID)
	}
	if filter.TopicID != 0 {
		q = q.Joins("JOIN feedbacks ON feedbacks.id = changelogs.feedback_id").
			Where("feedbacks.topic_id = ?", filter.TopicID)
	}

	err := q.Order("changelogs.created_at DESC").Find(&changelogs).Error
	return changelogs, err
}

func (r *changelogRepository) Update(ctx context.Context, changelog *models.Changelog) error {
	return r.db.WithContext(ctx).Save(changelog).Error
}

func (r *changelogRepository) Delete(ctx context.Context, id uint) error {
	// Hard delete: a soft-deleted row would keep holding the task_id unique
	// index and block republishing for the same task.
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Changelog{}, id).Error
}
