package service

import (
	"context"
	"errors"

	"echoboard/internal/models"
	"echoboard/internal/observability"
	"echoboard/internal/policy"
	"echoboard/internal/repository"
	"echoboard/internal/validation"

	"gorm.io/gorm"
)

// FeedbackService orchestrates the feedback lifecycle: creation against a
// topic, ownership-guarded edits, the explicit delete cascade (comments,
// then upvotes, then the feedback row), and upvote toggling.
type FeedbackService struct {
	feedbackRepo repository.FeedbackRepository
	topicRepo    repository.TopicRepository
	db           *gorm.DB
}

// CreateFeedbackInput carries a validated feedback payload. The creator is
// always the actor; it is not client-suppliable.
type CreateFeedbackInput struct {
	Title       string
	Description string
	TopicID     uint
}

// UpdateFeedbackInput carries a partial feedback update. Nil fields are
// left untouched. Status accepts any enumerated value: only cascades are
// restricted, not explicit edits.
type UpdateFeedbackInput struct {
	Title       *string
	Description *string
	TopicID     *uint
	Status      *models.FeedbackStatus
}

// NewFeedbackService creates a new FeedbackService. The db handle is used
// for the multi-row delete cascade.
func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	topicRepo repository.TopicRepository,
	db *gorm.DB,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		topicRepo:    topicRepo,
		db:           db,
	}
}

func (s *FeedbackService) CreateFeedback(ctx context.Context, actor policy.Actor, in CreateFeedbackInput) (*models.Feedback, error) {
	if !policy.CanCreateFeedback(actor) {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	if err := validation.Title(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.Description(in.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.topicRepo.GetByID(ctx, in.TopicID); err != nil {
		return nil, orNotFound(err, "Topic", in.TopicID)
	}

	feedback := &models.Feedback{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.FeedbackOpen,
		UserID:      actor.UserID,
		TopicID:     in.TopicID,
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.FeedbackCreated.Inc()
	return s.feedbackRepo.GetByID(ctx, feedback.ID, actor.UserID)
}

func (s *FeedbackService) GetFeedback(ctx context.Context, id uint, currentUserID uint) (*models.Feedback, error) {
	feedback, err := s.feedbackRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		return nil, orNotFound(err, "Feedback", id)
	}
	return feedback, nil
}

func (s *FeedbackService) ListFeedback(ctx context.Context, filter repository.FeedbackFilter, currentUserID uint) ([]*models.Feedback, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError("Invalid status filter")
	}
	feedbacks, err := s.feedbackRepo.List(ctx, filter, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return feedbacks, nil
}

func (s *FeedbackService) UpdateFeedback(ctx context.Context, actor policy.Actor, id uint, in UpdateFeedbackInput) (*models.Feedback, error) {
	feedback, err := s.feedbackRepo.GetByID(ctx, id, actor.UserID)
	if err != nil {
		return nil, orNotFound(err, "Feedback", id)
	}

	if !policy.CanUpdateFeedback(actor, feedback) {
		return nil, models.NewForbiddenError("You don't have permission to update this feedback")
	}

	if in.Title != nil {
		if err := validation.Title(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		feedback.Title = *in.Title
	}
	if in.Description != nil {
		if err := validation.Description(*in.Description); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		feedback.Description = *in.Description
	}
	if in.TopicID != nil {
		if _, err := s.topicRepo.GetByID(ctx, *in.TopicID); err != nil {
			return nil, orNotFound(err, "Topic", *in.TopicID)
		}
		feedback.TopicID = *in.TopicID
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewValidationError("Invalid status")
		}
		feedback.Status = *in.Status
	}

	if err := s.feedbackRepo.Update(ctx, feedback); err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.feedbackRepo.GetByID(ctx, feedback.ID, actor.UserID)
}

// DeleteFeedback removes a feedback and everything it owns. The cascade is
// explicit rather than delegated to the database: comments first, then
// upvotes, then the feedback row, all within one transaction. Feedback
// with tasks attached is protected.
func (s *FeedbackService) DeleteFeedback(ctx context.Context, actor policy.Actor, id uint) error {
	feedback, err := s.feedbackRepo.GetByID(ctx, id, 0)
	if err != nil {
		return orNotFound(err, "Feedback", id)
	}

	if !policy.CanDeleteFeedback(actor, feedback) {
		return models.NewForbiddenError("You don't have permission to delete this feedback")
	}

	taskCount, err := s.feedbackRepo.CountTasks(ctx, id)
	if err != nil {
		return models.NewInternalError(err)
	}
	if taskCount > 0 {
		return models.NewConflictError("Cannot delete feedback with associated tasks")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := repository.NewCommentRepository(tx)
		feedbacks := repository.NewFeedbackRepository(tx)

		if err := comments.DeleteByFeedback(ctx, id); err != nil {
			return err
		}
		if err := feedbacks.DeleteUpvotesByFeedback(ctx, id); err != nil {
			return err
		}
		return feedbacks.Delete(ctx, id)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleUpvote flips the actor's upvote on a feedback item and reports the
// resulting direction. Repeated calls alternate; the composite unique index
// on (user_id, feedback_id) guards the race between the existence check and
// the insert.
func (s *FeedbackService) ToggleUpvote(ctx context.Context, actor policy.Actor, feedbackID uint) (bool, error) {
	if !policy.CanUpvote(actor) {
		return false, models.NewUnauthorizedError("Authentication required")
	}

	if _, err := s.feedbackRepo.GetByID(ctx, feedbackID, 0); err != nil {
		return false, orNotFound(err, "Feedback", feedbackID)
	}

	existing, err := s.feedbackRepo.GetUpvote(ctx, actor.UserID, feedbackID)
	switch {
	case err == nil:
		if err := s.feedbackRepo.DeleteUpvote(ctx, existing.ID); err != nil {
			return false, models.NewInternalError(err)
		}
		observability.UpvoteToggles.WithLabelValues("down").Inc()
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		upvote := &models.Upvote{UserID: actor.UserID, FeedbackID: feedbackID}
		if err := s.feedbackRepo.CreateUpvote(ctx, upvote); err != nil {
			if isDuplicate(err) {
				return false, models.NewConflictError("Upvote already recorded")
			}
			return false, models.NewInternalError(err)
		}
		observability.UpvoteToggles.WithLabelValues("up").Inc()
		return true, nil
	default:
		return false, models.NewInternalError(err)
	}
}
