package repository

import (
	"context"

	"echoboard/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByFeedback(ctx context.Context, feedbackID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	DeleteByFeedback(ctx context.Context, feedbackID uint) error
	CountReplies(ctx context.Context, commentID uint) (int64, error)
	UnmarkAnswers(ctx context.Context, feedbackID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByFeedback(ctx context.Context, feedbackID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("feedback_id = ?", feedbackID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

func (r *commentRepository) DeleteByFeedback(ctx context.Context, feedbackID uint) error {
	return r.db.WithContext(ctx).
		Where("feedback_id = ?", feedbackID).
		Delete(&models.Comment{}).Error
}

func (r *commentRepository) CountReplies(ctx context.Context, commentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("parent_id = ?", commentID).
		Count(&count).Error
	return count, err
}

// UnmarkAnswers clears is_answer on every comment of the feedback. There
// should be at most one, but the sweep is unconditional.
func (r *commentRepository) UnmarkAnswers(ctx context.Context, feedbackID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("feedback_id = ? AND is_answer = ?", feedbackID, true).
		Update("is_answer", false).Error
}
