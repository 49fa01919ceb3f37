package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"trip-coordinator/internal/grouping"
	"trip-coordinator/internal/itinerary"
)

// postRegroup replaces the day's transport grouping wholesale with the
// caller-supplied plan. Invalid plans are rejected before anything is
// deleted.
func (s *Server) postRegroup(c *fiber.Ctx) error {
	tripID := c.Params("tripID")
	dayID := c.Params("dayID")

	var plan []itinerary.GroupSpec
	if err := c.BodyParser(&plan); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "body must be a JSON array of {mode, leader, members}",
		})
	}

	if err := s.grouping.Regroup(c.Context(), tripID, dayID, plan); err != nil {
		if errors.Is(err, grouping.ErrInvalidPlan) {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if s.metrics != nil {
		s.metrics.Regroups.Inc()
	}
	return c.JSON(fiber.Map{
		"status": "ok",
		"groups": len(plan),
	})
}
