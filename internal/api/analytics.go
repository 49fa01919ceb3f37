package api

import (
	"github.com/gofiber/fiber/v2"
)

// getAnalytics reports delay statistics derived from the trip's ETA
// snapshots.
func (s *Server) getAnalytics(c *fiber.Ctx) error {
	tripID := c.Params("tripID")

	avg, err := s.analytics.AverageDelayMinutes(c.Context(), tripID)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	buckets, err := s.analytics.DelayTimeBuckets(c.Context(), tripID)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"averageDelayMinutes": avg,
		"delayTimeBuckets":    buckets,
	})
}
