package server

import (
	"echoboard/internal/cache"
	"echoboard/internal/models"
	"echoboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.Context(), s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), s.actor(c), service.UpdateProfileInput{
		Name:  req.Name,
		Image: req.Image,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUsers handles GET /api/users (staff only). Backs the assignee picker
// on the task board.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	pg := parsePagination(c, 50)

	users, err := s.userService.ListUsers(c.Context(), s.actor(c), pg.Limit, pg.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user.Summary())
}

// GetUserCached handles GET /api/users/:id/cached. Same payload as the
// profile endpoint but served through the cache-aside layer.
func (s *Server) GetUserCached(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var summary models.UserSummary
	loadErr := cache.Aside(c.Context(), cache.UserKey(id), &summary, cache.UserTTL, func() error {
		user, err := s.userService.GetUser(c.Context(), id)
		if err != nil {
			return err
		}
		summary = user.Summary()
		return nil
	})
	if loadErr != nil {
		return respondServiceError(c, loadErr)
	}
	return c.JSON(summary)
}

// UpdateUserRole handles PUT /api/users/:id/role (admin only)
func (s *Server) UpdateUserRole(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, updateErr := s.userService.UpdateRole(c.Context(), s.actor(c), id, models.Role(req.Role))
	if updateErr != nil {
		return respondServiceError(c, updateErr)
	}
	return c.JSON(user)
}
