package server

import (
	"echoboard/internal/models"
	"echoboard/internal/repository"
	"echoboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetChangelogs handles GET /api/changelogs. Supports feedback_id and
// topic_id query filters.
func (s *Server) GetChangelogs(c *fiber.Ctx) error {
	filter := repository.ChangelogFilter{
		FeedbackID: uint(c.QueryInt("feedback_id", 0)),
		TopicID:    uint(c.QueryInt("topic_id", 0)),
	}

	changelogs, err := s.changelogService.ListChangelogs(c.Context(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"changelogs": changelogs})
}

// GetChangelog handles GET /api/changelogs/:id
func (s *Server) GetChangelog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	changelog, err := s.changelogService.GetChangelog(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(changelog)
}

// CreateChangelog handles POST /api/changelogs (staff only). The referenced
// task must be completed and not already have an entry.
func (s *Server) CreateChangelog(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		TaskID      uint   `json:"task_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	changelog, err := s.changelogService.CreateChangelog(c.Context(), s.actor(c), service.CreateChangelogInput{
		Title:       req.Title,
		Description: req.Description,
		TaskID:      req.TaskID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	if s.notifier != nil {
		_ = s.notifier.PublishChangelogPublished(c.Context(), changelog.FeedbackID, s.currentUserID(c))
	}
	return c.Status(fiber.StatusCreated).JSON(changelog)
}

// UpdateChangelog handles PUT /api/changelogs/:id (staff only). Only title
// and description are editable.
func (s *Server) UpdateChangelog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	changelog, err := s.changelogService.UpdateChangelog(c.Context(), s.actor(c), id, service.UpdateChangelogInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(changelog)
}

// DeleteChangelog handles DELETE /api/changelogs/:id (admin only)
func (s *Server) DeleteChangelog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.changelogService.DeleteChangelog(c.Context(), s.actor(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Changelog entry deleted"})
}
