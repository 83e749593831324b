package server

import (
	"echoboard/internal/models"
	"echoboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/feedback/:id/comments. Comments come back as
// a nested thread with the accepted answer, if any, floated to the front.
func (s *Server) GetComments(c *fiber.Ctx) error {
	feedbackID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	thread, err := s.commentService.ListThread(c.Context(), feedbackID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"comments": thread})
}

// CreateComment handles POST /api/feedback/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	feedbackID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.PostComment(c.Context(), s.actor(c), service.PostCommentInput{
		Content:    req.Content,
		FeedbackID: feedbackID,
		ParentID:   req.ParentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	if s.notifier != nil {
		_ = s.notifier.PublishCommentPosted(c.Context(), feedbackID, s.currentUserID(c))
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id (author only)
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.Context(), s.actor(c), id, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id. Comments with replies are
// soft-deleted so the thread keeps its shape.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), s.actor(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// MarkAnswer handles POST /api/comments/:id/answer. Marking closes the
// feedback and clears any previously accepted answer; posting against the
// current answer toggles it back off.
func (s *Server) MarkAnswer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.MarkAnswer(c.Context(), s.actor(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	if s.notifier != nil && comment.IsAnswer {
		_ = s.notifier.PublishAnswerMarked(c.Context(), comment.FeedbackID, s.currentUserID(c))
	}
	return c.JSON(comment)
}

// UnmarkAnswer handles DELETE /api/comments/:id/answer. The feedback keeps
// whatever status it has; unmarking never reopens it.
func (s *Server) UnmarkAnswer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.UnmarkAnswer(c.Context(), s.actor(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}
