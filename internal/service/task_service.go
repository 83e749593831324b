package service

import (
	"context"

	"echoboard/internal/models"
	"echoboard/internal/observability"
	"echoboard/internal/policy"
	"echoboard/internal/repository"
	"echoboard/internal/validation"

	"gorm.io/gorm"
)

// TaskService manages the staff task board and drives two of the automatic
// feedback cascades: the first task created against an open feedback moves
// it to in-development, and a task reaching completed moves its feedback to
// completed. Cascade decisions always compare against the status read
// before the write, inside the same transaction as the write itself.
type TaskService struct {
	taskRepo     repository.TaskRepository
	feedbackRepo repository.FeedbackRepository
	userRepo     repository.UserRepository
	db           *gorm.DB
}

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	FeedbackID  uint
	AssigneeID  *uint
}

// UpdateTaskInput carries a partial task update. Status here is a direct
// edit; the guided one-step advance lives in AdvanceTask and ResolveTesting.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	AssigneeID    *uint
	ClearAssignee bool
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	feedbackRepo repository.FeedbackRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		feedbackRepo: feedbackRepo,
		userRepo:     userRepo,
		db:           db,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, actor policy.Actor, in CreateTaskInput) (*models.Task, error) {
	if !policy.CanManageTasks(actor) {
		return nil, models.NewForbiddenError("Only staff can manage tasks")
	}

	if err := validation.Title(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, models.NewValidationError("Invalid priority")
	}

	if in.AssigneeID != nil {
		if _, err := s.userRepo.GetByID(ctx, *in.AssigneeID); err != nil {
			return nil, orNotFound(err, "User", *in.AssigneeID)
		}
	}

	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.TaskBacklog,
		Priority:    priority,
		CreatorID:   actor.UserID,
		FeedbackID:  in.FeedbackID,
		AssigneeID:  in.AssigneeID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repository.NewTaskRepository(tx)
		feedbacks := repository.NewFeedbackRepository(tx)

		feedback, err := feedbacks.GetByID(ctx, in.FeedbackID, 0)
		if err != nil {
			return orNotFound(err, "Feedback", in.FeedbackID)
		}

		if err := tasks.Create(ctx, task); err != nil {
			return models.NewInternalError(err)
		}

		// The status read above predates the insert, so this fires for
		// the first task only when the feedback was still open.
		if feedback.Status == models.FeedbackOpen {
			if err := feedbacks.UpdateStatus(ctx, feedback.ID, models.FeedbackInDevelopment); err != nil {
				return models.NewInternalError(err)
			}
			observability.StatusCascades.WithLabelValues("task_created").Inc()
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	return s.taskRepo.GetByID(ctx, task.ID)
}

func (s *TaskService) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Task", id)
	}
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]*models.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError("Invalid status filter")
	}
	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tasks, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, actor policy.Actor, id uint, in UpdateTaskInput) (*models.Task, error) {
	if !policy.CanManageTasks(actor) {
		return nil, models.NewForbiddenError("Only staff can manage tasks")
	}

	if in.Title != nil {
		if err := validation.Title(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, models.NewValidationError("Invalid status")
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, models.NewValidationError("Invalid priority")
	}
	if in.AssigneeID != nil {
		if _, err := s.userRepo.GetByID(ctx, *in.AssigneeID); err != nil {
			return nil, orNotFound(err, "User", *in.AssigneeID)
		}
	}

	var updated *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repository.NewTaskRepository(tx)

		task, err := tasks.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Task", id)
		}
		previous := task.Status

		if in.Title != nil {
			task.Title = *in.Title
		}
		if in.Description != nil {
			task.Description = *in.Description
		}
		if in.Status != nil {
			task.Status = *in.Status
		}
		if in.Priority != nil {
			task.Priority = *in.Priority
		}
		if in.ClearAssignee {
			task.AssigneeID = nil
		} else if in.AssigneeID != nil {
			task.AssigneeID = in.AssigneeID
		}

		if err := tasks.Update(ctx, task); err != nil {
			return models.NewInternalError(err)
		}

		if err := s.completeCascade(ctx, tx, task, previous); err != nil {
			return err
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	return s.taskRepo.GetByID(ctx, updated.ID)
}

// AdvanceTask moves a task one step along the guided sequence. Testing is a
// decision point and completed is terminal, so both refuse to advance.
func (s *TaskService) AdvanceTask(ctx context.Context, actor policy.Actor, id uint) (*models.Task, error) {
	if !policy.CanManageTasks(actor) {
		return nil, models.NewForbiddenError("Only staff can manage tasks")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repository.NewTaskRepository(tx)

		task, err := tasks.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Task", id)
		}

		next, ok := task.Status.Next()
		if !ok {
			if task.Status == models.TaskTesting {
				return models.NewConflictError("Task in testing requires an approve or reject decision")
			}
			return models.NewConflictError("Completed task cannot be advanced")
		}

		task.Status = next
		if err := tasks.Update(ctx, task); err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	return s.taskRepo.GetByID(ctx, id)
}

// ResolveTesting settles a task that sits in testing: approval completes it
// (cascading to the feedback), rejection sends it back to next-up.
func (s *TaskService) ResolveTesting(ctx context.Context, actor policy.Actor, id uint, approved bool) (*models.Task, error) {
	if !policy.CanManageTasks(actor) {
		return nil, models.NewForbiddenError("Only staff can manage tasks")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := repository.NewTaskRepository(tx)

		task, err := tasks.GetByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Task", id)
		}
		if task.Status != models.TaskTesting {
			return models.NewConflictError("Task is not in testing")
		}
		previous := task.Status

		if approved {
			task.Status = models.TaskCompleted
		} else {
			task.Status = models.TaskNextUp
		}
		if err := tasks.Update(ctx, task); err != nil {
			return models.NewInternalError(err)
		}

		return s.completeCascade(ctx, tx, task, previous)
	})
	if err != nil {
		return nil, asAppError(err)
	}

	return s.taskRepo.GetByID(ctx, id)
}

// DeleteTask removes a task. A task with a changelog entry is protected;
// the entry must be deleted first.
func (s *TaskService) DeleteTask(ctx context.Context, actor policy.Actor, id uint) error {
	if !policy.CanDeleteTask(actor) {
		return models.NewForbiddenError("Only admins can delete tasks")
	}

	if _, err := s.taskRepo.GetByID(ctx, id); err != nil {
		return orNotFound(err, "Task", id)
	}

	hasChangelog, err := s.taskRepo.HasChangelog(ctx, id)
	if err != nil {
		return models.NewInternalError(err)
	}
	if hasChangelog {
		return models.NewConflictError("Cannot delete task with a changelog entry")
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// completeCascade moves the parent feedback to completed when a task
// transitions into completed. The previous status must come from the read
// that preceded the write: re-saving an already-completed task never
// re-fires the cascade.
func (s *TaskService) completeCascade(ctx context.Context, tx *gorm.DB, task *models.Task, previous models.TaskStatus) error {
	if task.Status != models.TaskCompleted || previous == models.TaskCompleted {
		return nil
	}
	feedbacks := repository.NewFeedbackRepository(tx)
	if err := feedbacks.UpdateStatus(ctx, task.FeedbackID, models.FeedbackCompleted); err != nil {
		return models.NewInternalError(err)
	}
	observability.StatusCascades.WithLabelValues("task_completed").Inc()
	return nil
}
