package repository

import (
	"context"

	"echoboard/internal/models"

	"gorm.io/gorm"
)

// TaskFilter narrows task listings for the kanban board.
type TaskFilter struct {
	Status     models.TaskStatus
	AssigneeID uint
	FeedbackID uint
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) error
	HasChangelog(ctx context.Context, taskID uint) (bool, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Assignee").
		Preload("Feedback").
		Preload("Feedback.Topic").
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	var tasks []*models.Task
	q := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Assignee").
		Preload("Feedback").
		Preload("Feedback.Topic")

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AssigneeID != 0 {
		q = q.Where("assignee_id = ?", filter.AssigneeID)
	}
	if filter.FeedbackID != 0 {
		q = q.Where("feedback_id = ?", filter.FeedbackID)
	}

	err := q.Order("updated_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}

func (r *taskRepository) HasChangelog(ctx context.Context, taskID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Changelog{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count > 0, err
}
