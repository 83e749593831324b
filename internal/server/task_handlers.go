package server

import (
	"echoboard/internal/models"
	"echoboard/internal/repository"
	"echoboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTasks handles GET /api/tasks. Supports status, assignee_id, and
// feedback_id query filters for the board view.
func (s *Server) GetTasks(c *fiber.Ctx) error {
	filter := repository.TaskFilter{
		AssigneeID: uint(c.QueryInt("assignee_id", 0)),
		FeedbackID: uint(c.QueryInt("feedback_id", 0)),
	}
	if status := c.Query("status"); status != "" {
		ts := models.TaskStatus(status)
		if !ts.Valid() {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid status filter"))
		}
		filter.Status = ts
	}

	tasks, err := s.taskService.ListTasks(c.Context(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

// GetTask handles GET /api/tasks/:id
func (s *Server) GetTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	task, err := s.taskService.GetTask(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(task)
}

// CreateTask handles POST /api/tasks (staff only). Creating the first task
// for open feedback moves that feedback to in-development.
func (s *Server) CreateTask(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		FeedbackID  uint   `json:"feedback_id"`
		AssigneeID  *uint  `json:"assignee_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	task, err := s.taskService.CreateTask(c.Context(), s.actor(c), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		FeedbackID:  req.FeedbackID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	if s.notifier != nil && task.Feedback.Status == models.FeedbackInDevelopment {
		_ = s.notifier.PublishStatusChanged(c.Context(), task.FeedbackID, s.currentUserID(c), models.FeedbackInDevelopment)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask handles PUT /api/tasks/:id (staff only). Completing a task
// here also completes its feedback.
func (s *Server) UpdateTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title         *string `json:"title"`
		Description   *string `json:"description"`
		Status        *string `json:"status"`
		Priority      *string `json:"priority"`
		AssigneeID    *uint   `json:"assignee_id"`
		ClearAssignee bool    `json:"clear_assignee"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
	}
	if req.Status != nil {
		ts := models.TaskStatus(*req.Status)
		in.Status = &ts
	}
	if req.Priority != nil {
		tp := models.TaskPriority(*req.Priority)
		in.Priority = &tp
	}

	task, err := s.taskService.UpdateTask(c.Context(), s.actor(c), id, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	if s.notifier != nil && req.Status != nil && task.Status == models.TaskCompleted {
		_ = s.notifier.PublishStatusChanged(c.Context(), task.FeedbackID, s.currentUserID(c), models.FeedbackCompleted)
	}
	return c.JSON(task)
}

// AdvanceTask handles POST /api/tasks/:id/advance (staff only). Moves the
// task one step along the board; tasks in testing need a resolve decision
// instead.
func (s *Server) AdvanceTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	task, err := s.taskService.AdvanceTask(c.Context(), s.actor(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(task)
}

// ResolveTesting handles POST /api/tasks/:id/resolve (staff only). Approval
// completes the task, rejection sends it back to next-up.
func (s *Server) ResolveTesting(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	task, err := s.taskService.ResolveTesting(c.Context(), s.actor(c), id, req.Approved)
	if err != nil {
		return respondServiceError(c, err)
	}

	if s.notifier != nil && task.Status == models.TaskCompleted {
		_ = s.notifier.PublishStatusChanged(c.Context(), task.FeedbackID, s.currentUserID(c), models.FeedbackCompleted)
	}
	return c.JSON(task)
}

// DeleteTask handles DELETE /api/tasks/:id (admin only). Tasks with a
// published changelog entry cannot be deleted.
func (s *Server) DeleteTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.taskService.DeleteTask(c.Context(), s.actor(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}
