package server

import (
	"echoboard/internal/models"
	"echoboard/internal/repository"
	"echoboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeedbackList handles GET /api/feedback. Supports topic_id, status,
// sort (newest, oldest, most-upvotes, least-upvotes), limit, and offset
// query parameters. The upvoted flag on each item reflects the current
// user when the request carries a token.
func (s *Server) GetFeedbackList(c *fiber.Ctx) error {
	pg := parsePagination(c, 20)

	filter := repository.FeedbackFilter{
		TopicID: uint(c.QueryInt("topic_id", 0)),
		Sort:    c.Query("sort", "newest"),
		Limit:   pg.Limit,
		Offset:  pg.Offset,
	}
	if status := c.Query("status"); status != "" {
		fs := models.FeedbackStatus(status)
		if !fs.Valid() {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid status filter"))
		}
		filter.Status = fs
	}

	feedback, err := s.feedbackService.ListFeedback(c.Context(), filter, s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"feedback": feedback,
		"limit":    pg.Limit,
		"offset":   pg.Offset,
	})
}

// GetFeedback handles GET /api/feedback/:id
func (s *Server) GetFeedback(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	feedback, err := s.feedbackService.GetFeedback(c.Context(), id, s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(feedback)
}

// CreateFeedback handles POST /api/feedback
func (s *Server) CreateFeedback(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		TopicID     uint   `json:"topic_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	feedback, err := s.feedbackService.CreateFeedback(c.Context(), s.actor(c), service.CreateFeedbackInput{
		Title:       req.Title,
		Description: req.Description,
		TopicID:     req.TopicID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(feedback)
}

// UpdateFeedback handles PUT /api/feedback/:id. Authors may edit title,
// description, and topic; only staff may set status directly.
func (s *Server) UpdateFeedback(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		TopicID     *uint   `json:"topic_id"`
		Status      *string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateFeedbackInput{
		Title:       req.Title,
		Description: req.Description,
		TopicID:     req.TopicID,
	}
	if req.Status != nil {
		fs := models.FeedbackStatus(*req.Status)
		in.Status = &fs
	}

	feedback, err := s.feedbackService.UpdateFeedback(c.Context(), s.actor(c), id, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.Status != nil && s.notifier != nil {
		_ = s.notifier.PublishStatusChanged(c.Context(), feedback.ID, s.currentUserID(c), feedback.Status)
	}
	return c.JSON(feedback)
}

// DeleteFeedback handles DELETE /api/feedback/:id. Feedback with tasks
// attached cannot be deleted; its comments and upvotes go with it.
func (s *Server) DeleteFeedback(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.feedbackService.DeleteFeedback(c.Context(), s.actor(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Feedback deleted"})
}

// ToggleUpvote handles POST /api/feedback/:id/upvote. The same endpoint adds
// or removes the caller's upvote depending on current state.
func (s *Server) ToggleUpvote(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	upvoted, err := s.feedbackService.ToggleUpvote(c.Context(), s.actor(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"upvoted": upvoted})
}
