package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"trip-coordinator/internal/geo"
	"trip-coordinator/internal/itinerary"
)

type taskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

// postTask appends a task to the end of a day's ordering.
func (s *Server) postTask(c *fiber.Ctx) error {
	tripID := c.Params("tripID")
	dayID := c.Params("dayID")

	var req taskRequest
	if err := c.BodyParser(&req); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "invalid task body",
		})
	}
	if req.Title == "" || req.StartTime == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "title and startTime are required",
		})
	}
	if _, err := time.Parse("15:04", req.StartTime); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "startTime must be HH:MM",
		})
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "lat and lng must be set together",
		})
	}

	task := itinerary.Task{
		TripID:      tripID,
		DayID:       dayID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if req.Lat != nil {
		if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "lat/lng out of range",
			})
		}
		task.Coord = &geo.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	}

	created, err := s.store.AddTask(c.Context(), task)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"id":         created.ID,
		"orderIndex": created.OrderIndex,
	})
}

type reorderRequest struct {
	Before string `json:"before"`
}

// postReorderTask moves a task immediately before another task of the
// same day using a fractional ordering key.
func (s *Server) postReorderTask(c *fiber.Ctx) error {
	taskID := c.Params("taskID")

	var req reorderRequest
	if err := c.BodyParser(&req); err != nil || req.Before == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "body must be JSON with a before task id",
		})
	}

	if err := s.store.ReorderTaskBefore(c.Context(), taskID, req.Before); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// deleteTask soft-deletes a task; the row remains for history.
func (s *Server) deleteTask(c *fiber.Ctx) error {
	taskID := c.Params("taskID")

	if err := s.store.SoftDeleteTask(c.Context(), taskID); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
