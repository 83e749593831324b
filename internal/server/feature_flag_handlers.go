package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/feature-flags. Percentage rollouts are
// resolved against the acting user, so the same flag set can differ per
// caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"flags": s.featureFlags.Snapshot(s.currentUserID(c)),
	})
}
