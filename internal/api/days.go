package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"trip-coordinator/internal/eta"
)

type taskView struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	StartTime        string   `json:"startTime"`
	EndTime          string   `json:"endTime,omitempty"`
	Lat              *float64 `json:"lat,omitempty"`
	Lng              *float64 `json:"lng,omitempty"`
	OrderIndex       float64  `json:"orderIndex"`
	LateMinutes      int      `json:"lateMinutes"`
	WorstLateMinutes int      `json:"worstLateMinutes"`
	IsToday          bool     `json:"isToday"`
	IsPast           bool     `json:"isPast"`
}

type groupView struct {
	ID      string   `json:"id"`
	Mode    string   `json:"mode"`
	Label   string   `json:"label,omitempty"`
	Leader  string   `json:"leader"`
	Members []string `json:"members"`
}

// getDay renders the day view: groups are ensured first, then every task
// is annotated with its lateness signal.
func (s *Server) getDay(c *fiber.Ctx) error {
	tripID := c.Params("tripID")
	dayID := c.Params("dayID")

	if err := s.grouping.EnsureGroups(c.Context(), tripID, dayID); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	eval, err := s.engine.EvaluateDay(c.Context(), tripID, dayID)
	if err != nil {
		if errors.Is(err, eta.ErrDayNotFound) {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "day not found",
			})
		}
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	groups := make([]groupView, 0, len(eval.Groups))
	for _, g := range eval.Groups {
		members, err := s.store.GroupMembers(c.Context(), g.ID)
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		groups = append(groups, groupView{
			ID:      g.ID,
			Mode:    string(g.Mode),
			Label:   g.Label,
			Leader:  g.LeaderID,
			Members: members,
		})
	}

	tasks := make([]taskView, 0, len(eval.Tasks))
	for _, te := range eval.Tasks {
		tasks = append(tasks, newTaskView(te))
	}

	return c.JSON(fiber.Map{
		"day": fiber.Map{
			"id":     eval.Day.ID,
			"tripId": eval.Day.TripID,
			"date":   eval.Day.Date.Format("2006-01-02"),
		},
		"tasks":  tasks,
		"groups": groups,
	})
}

func newTaskView(te eta.TaskEvaluation) taskView {
	v := taskView{
		ID:               te.Task.ID,
		Title:            te.Task.Title,
		Description:      te.Task.Description,
		StartTime:        te.Task.StartTime,
		EndTime:          te.Task.EndTime,
		OrderIndex:       te.Task.OrderIndex,
		LateMinutes:      te.LateMinutes,
		WorstLateMinutes: te.WorstLateMinutes,
		IsToday:          te.IsToday,
		IsPast:           te.IsPast,
	}
	if te.Task.Coord != nil {
		v.Lat = &te.Task.Coord.Lat
		v.Lng = &te.Task.Coord.Lng
	}
	return v
}
