package repository

import (
	"context"

	"echoboard/internal/models"

	"gorm.io/gorm"
)

// FeedbackFilter narrows and orders feedback listings.
type FeedbackFilter struct {
	TopicID uint
	Status  models.FeedbackStatus
	Sort    string // newest (default), oldest, most-upvotes, least-upvotes
	Limit   int
	Offset  int
}

// FeedbackRepository defines the interface for feedback data operations.
// Upvotes are owned by feedback and managed here, mirroring their cascade
// lifetime.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Feedback, error)
	List(ctx context.Context, filter FeedbackFilter, currentUserID uint) ([]*models.Feedback, error)
	Update(ctx context.Context, feedback *models.Feedback) error
	UpdateStatus(ctx context.Context, id uint, status models.FeedbackStatus) error
	Delete(ctx context.Context, id uint) error
	CountTasks(ctx context.Context, feedbackID uint) (int64, error)

	GetUpvote(ctx context.Context, userID, feedbackID uint) (*models.Upvote, error)
	CreateUpvote(ctx context.Context, upvote *models.Upvote) error
	DeleteUpvote(ctx context.Context, id uint) error
	DeleteUpvotesByFeedback(ctx context.Context, feedbackID uint) error
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.applyDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Topic").
		First(&feedback, id).Error
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) List(ctx context.Context, filter FeedbackFilter, currentUserID uint) ([]*models.Feedback, error) {
	var feedbacks []*models.Feedback
	q := r.applyDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Topic")

	if filter.TopicID != 0 {
		q = q.Where("feedbacks.topic_id = ?", filter.TopicID)
	}
	if filter.Status != "" {
		q = q.Where("feedbacks.status = ?", filter.Status)
	}
	q = applyFeedbackSort(q, filter.Sort)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	err := q.Find(&feedbacks).Error
	return feedbacks, err
}

func applyFeedbackSort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case "oldest":
		return db.Order("feedbacks.created_at ASC")
	case "most-upvotes":
		return db.Order("upvotes_count DESC, feedbacks.created_at DESC")
	case "least-upvotes":
		return db.Order("upvotes_count ASC, feedbacks.created_at DESC")
	default: // "newest" and anything unrecognized
		return db.Order("feedbacks.created_at DESC")
	}
}

// applyDetails selects upvote/comment counts as subqueries so listings stay
// a single round trip.
func (r *feedbackRepository) applyDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "feedbacks.*, " +
		"(SELECT COUNT(*) FROM upvotes WHERE upvotes.feedback_id = feedbacks.id) as upvotes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.feedback_id = feedbacks.id) as comments_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM upvotes WHERE upvotes.feedback_id = feedbacks.id AND upvotes.user_id = ?) as upvoted", currentUserID)
	}

	return db.Select(selectQuery + ", false as upvoted")
}

func (r *feedbackRepository) Update(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Save(feedback).Error
}

func (r *feedbackRepository) UpdateStatus(ctx context.Context, id uint, status models.FeedbackStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *feedbackRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Feedback{}, id).Error
}

func (r *feedbackRepository) CountTasks(ctx context.Context, feedbackID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("feedback_id = ?", feedbackID).
		Count(&count).Error
	return count, err
}

func (r *feedbackRepository) GetUpvote(ctx context.Context, userID, feedbackID uint) (*models.Upvote, error) {
	var upvote models.Upvote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND feedback_id = ?", userID, feedbackID).
		First(&upvote).Error
	if err != nil {
		return nil, err
	}
	return &upvote, nil
}

func (r *feedbackRepository) CreateUpvote(ctx context.Context, upvote *models.Upvote) error {
	return r.db.WithContext(ctx).Create(upvote).Error
}

func (r *feedbackRepository) DeleteUpvote(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Upvote{}, id).Error
}

func (r *feedbackRepository) DeleteUpvotesByFeedback(ctx context.Context, feedbackID uint) error {
	return r.db.WithContext(ctx).
		Where("feedback_id = ?", feedbackID).
		Delete(&models.Upvote{}).Error
}
