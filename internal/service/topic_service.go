package service

import (
	"context"
	"strings"

	"echoboard/internal/cache"
	"echoboard/internal/models"
	"echoboard/internal/policy"
	"echoboard/internal/repository"
	"echoboard/internal/validation"
)

// TopicService manages the topic directory. Topics are admin-curated and a
// topic with feedback attached cannot be removed.
type TopicService struct {
	topicRepo repository.TopicRepository
}

// CreateTopicInput carries a validated topic payload.
type CreateTopicInput struct {
	Name        string
	Description string
	Color       string
	Icon        string
}

// UpdateTopicInput carries a partial topic update. Nil fields are left
// untouched.
type UpdateTopicInput struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
}

// NewTopicService creates a new TopicService
func NewTopicService(topicRepo repository.TopicRepository) *TopicService {
	return &TopicService{topicRepo: topicRepo}
}

func (s *TopicService) CreateTopic(ctx context.Context, actor policy.Actor, in CreateTopicInput) (*models.Topic, error) {
	if !policy.CanManageTopics(actor) {
		return nil, models.NewForbiddenError("You don't have permission to manage topics")
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := validation.TopicName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	color := in.Color
	if color == "" {
		color = "#0284c7"
	}
	if err := validation.HexColor(color); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	topic := &models.Topic{
		Name:        in.Name,
		Description: in.Description,
		Color:       color,
		Icon:        in.Icon,
	}
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		if isDuplicate(err) {
			return nil, models.NewConflictError("A topic with this name already exists")
		}
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateTopics(ctx)
	return topic, nil
}

func (s *TopicService) GetTopic(ctx context.Context, id uint) (*models.Topic, error) {
	topic, err := s.topicRepo.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Topic", id)
	}
	return topic, nil
}

// ListTopics returns all topics ordered by name, served cache-aside.
func (s *TopicService) ListTopics(ctx context.Context) ([]*models.Topic, error) {
	var topics []*models.Topic
	err := cache.Aside(ctx, cache.TopicsListKey, &topics, cache.TopicsTTL, func() error {
		var loadErr error
		topics, loadErr = s.topicRepo.List(ctx)
		return loadErr
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return topics, nil
}

func (s *TopicService) UpdateTopic(ctx context.Context, actor policy.Actor, id uint, in UpdateTopicInput) (*models.Topic, error) {
	if !policy.CanManageTopics(actor) {
		return nil, models.NewForbiddenError("You don't have permission to manage topics")
	}

	topic, err := s.topicRepo.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Topic", id)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.TopicName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		topic.Name = name
	}
	if in.Description != nil {
		topic.Description = *in.Description
	}
	if in.Color != nil {
		if err := validation.HexColor(*in.Color); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		topic.Color = *in.Color
	}
	if in.Icon != nil {
		topic.Icon = *in.Icon
	}

	if err := s.topicRepo.Update(ctx, topic); err != nil {
		if isDuplicate(err) {
			return nil, models.NewConflictError("A topic with this name already exists")
		}
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateTopics(ctx)
	return topic, nil
}

func (s *TopicService) DeleteTopic(ctx context.Context, actor policy.Actor, id uint) error {
	if !policy.CanDeleteTopic(actor) {
		return models.NewForbiddenError("You don't have permission to delete topics")
	}

	if _, err := s.topicRepo.GetByID(ctx, id); err != nil {
		return orNotFound(err, "Topic", id)
	}

	count, err := s.topicRepo.CountFeedback(ctx, id)
	if err != nil {
		return models.NewInternalError(err)
	}
	if count > 0 {
		return models.NewConflictError("Cannot delete topic with associated feedback")
	}

	if err := s.topicRepo.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateTopics(ctx)
	return nil
}
