package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"trip-coordinator/internal/geo"
	"trip-coordinator/internal/itinerary"
)

type locationRequest struct {
	UserID string  `json:"userId"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// postLocation appends one observation to a group's location ledger.
// Coordinate ranges are validated here; the ledger itself accepts anything.
func (s *Server) postLocation(c *fiber.Ctx) error {
	groupID := c.Params("groupID")

	var req locationRequest
	if err := c.BodyParser(&req); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "body must be JSON with userId, lat, lng",
		})
	}
	if req.UserID == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "userId is required",
		})
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "lat/lng out of range",
		})
	}

	update, err := s.store.RecordLocation(c.Context(), itinerary.LocationUpdate{
		UserID:  req.UserID,
		GroupID: groupID,
		Coord:   geo.Coordinate{Lat: req.Lat, Lng: req.Lng},
	})
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if s.metrics != nil {
		s.metrics.LocationUpdates.Inc()
	}
	if err := s.publisher.PublishLocation(update); err != nil {
		log.Warn().Err(err).Str("group", groupID).Msg("publish location update")
	}

	return c.JSON(fiber.Map{
		"id":         update.ID,
		"recordedAt": update.RecordedAt,
	})
}
