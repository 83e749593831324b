package service

import (
	"context"

	"echoboard/internal/models"
	"echoboard/internal/policy"
	"echoboard/internal/repository"
	"echoboard/internal/validation"
)

// ChangelogService publishes release notes for completed work. An entry can
// only be created against a completed task, each task carries at most one
// entry, and the entry denormalizes the task's feedback id at creation so
// the feed can be filtered without joining through tasks.
type ChangelogService struct {
	changelogRepo repository.ChangelogRepository
	taskRepo      repository.TaskRepository
}

type CreateChangelogInput struct {
	Title       string
	Description string
	TaskID      uint
}

// UpdateChangelogInput never touches TaskID or FeedbackID: an entry stays
// bound to the task it was published for.
type UpdateChangelogInput struct {
	Title       *string
	Description *string
}

func NewChangelogService(changelogRepo repository.ChangelogRepository, taskRepo repository.TaskRepository) *ChangelogService {
	return &ChangelogService{changelogRepo: changelogRepo, taskRepo: taskRepo}
}

func (s *ChangelogService) CreateChangelog(ctx context.Context, actor policy.Actor, in CreateChangelogInput) (*models.Changelog, error) {
	if !policy.CanManageChangelogs(actor) {
		return nil, models.NewForbiddenError("Only staff can manage changelogs")
	}

	if err := validation.Title(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.Description(in.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	task, err := s.taskRepo.GetByID(ctx, in.TaskID)
	if err != nil {
		return nil, orNotFound(err, "Task", in.TaskID)
	}
	if task.Status != models.TaskCompleted {
		return nil, models.NewConflictError("Changelog entries can only be published for completed tasks")
	}

	hasEntry, err := s.taskRepo.HasChangelog(ctx, in.TaskID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if hasEntry {
		return nil, models.NewConflictError("Task already has a changelog entry")
	}

	changelog := &models.Changelog{
		Title:       in.Title,
		Description: in.Description,
		TaskID:      task.ID,
		FeedbackID:  task.FeedbackID,
	}
	if err := s.changelogRepo.Create(ctx, changelog); err != nil {
		if isDuplicate(err) {
			return nil, models.NewConflictError("Task already has a changelog entry")
		}
		return nil, models.NewInternalError(err)
	}

	return s.changelogRepo.GetByID(ctx, changelog.ID)
}

func (s *ChangelogService) GetChangelog(ctx context.Context, id uint) (*models.Changelog, error) {
	changelog, err := s.changelogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Changelog", id)
	}
	return changelog, nil
}

func (s *ChangelogService) ListChangelogs(ctx context.Context, filter repository.ChangelogFilter) ([]*models.Changelog, error) {
	changelogs, err := s.changelogRepo.List(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return changelogs, nil
}

func (s *ChangelogService) UpdateChangelog(ctx context.Context, actor policy.Actor, id uint, in UpdateChangelogInput) (*models.Changelog, error) {
	if !policy.CanManageChangelogs(actor) {
		return nil, models.NewForbiddenError("Only staff can manage changelogs")
	}

	changelog, err := s.changelogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Changelog", id)
	}

	if in.Title != nil {
		if err := validation.Title(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changelog.Title = *in.Title
	}
	if in.Description != nil {
		if err := validation.Description(*in.Description); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changelog.Description = *in.Description
	}

	if err := s.changelogRepo.Update(ctx, changelog); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.changelogRepo.GetByID(ctx, changelog.ID)
}

// DeleteChangelog is narrower than the rest of changelog management:
// developers may publish and edit entries, but retracting one is admin-only.
func (s *ChangelogService) DeleteChangelog(ctx context.Context, actor policy.Actor, id uint) error {
	if !policy.CanDeleteChangelog(actor) {
		return models.NewForbiddenError("Only admins can delete changelogs")
	}

	if _, err := s.changelogRepo.GetByID(ctx, id); err != nil {
		return orNotFound(err, "Changelog", id)
	}

	if err := s.changelogRepo.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
