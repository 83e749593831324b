package repository

import (
	"context"

	"echoboard/internal/models"

	"gorm.io/gorm"
)

// TopicRepository defines the interface for topic data operations
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	GetByID(ctx context.Context, id uint) (*models.Topic, error)
	List(ctx context.Context) ([]*models.Topic, error)
	Update(ctx context.Context, topic *models.Topic) error
	Delete(ctx context.Context, id uint) error
	CountFeedback(ctx context.Context, topicID uint) (int64, error)
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository creates a new TopicRepository
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepository) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) List(ctx context.Context) ([]*models.Topic, error) {
	var topics []*models.Topic
	err := r.db.WithContext(ctx).Order("name ASC").Find(&topics).Error
	return topics, err
}

func (r *topicRepository) Update(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

func (r *topicRepository) Delete(ctx context.Context, id uint) error {
	// Hard delete so the unique name becomes available again. The service
	// only deletes topics with no feedback, so nothing dangles.
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Topic{}, id).Error
}

func (r *topicRepository) CountFeedback(ctx context.Context, topicID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("topic_id = ?", topicID).
		Count(&count).Error
	return count, err
}
