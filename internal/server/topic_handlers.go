package server

import (
	"echoboard/internal/models"
	"echoboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTopics handles GET /api/topics
func (s *Server) GetTopics(c *fiber.Ctx) error {
	topics, err := s.topicService.ListTopics(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"topics": topics})
}

// GetTopic handles GET /api/topics/:id
func (s *Server) GetTopic(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	topic, err := s.topicService.GetTopic(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(topic)
}

// CreateTopic handles POST /api/topics (admin only)
func (s *Server) CreateTopic(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
		Icon        string `json:"icon"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	topic, err := s.topicService.CreateTopic(c.Context(), s.actor(c), service.CreateTopicInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

// UpdateTopic handles PUT /api/topics/:id (admin only)
func (s *Server) UpdateTopic(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Color       *string `json:"color"`
		Icon        *string `json:"icon"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	topic, err := s.topicService.UpdateTopic(c.Context(), s.actor(c), id, service.UpdateTopicInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(topic)
}

// DeleteTopic handles DELETE /api/topics/:id (admin only). Topics that still
// have feedback attached cannot be deleted.
func (s *Server) DeleteTopic(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.topicService.DeleteTopic(c.Context(), s.actor(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Topic deleted"})
}
