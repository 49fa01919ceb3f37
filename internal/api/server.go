// Package api exposes the coordinator's core operations over HTTP: the
// per-day lateness view, transport regrouping, location recording and
// delay analytics.
package api

import (
	"github.com/gofiber/fiber/v2"

	"trip-coordinator/internal/analytics"
	"trip-coordinator/internal/eta"
	"trip-coordinator/internal/grouping"
	"trip-coordinator/internal/metrics"
	"trip-coordinator/internal/publisher"
	"trip-coordinator/internal/store"
)

type Server struct {
	app *fiber.App

	store     *store.Store
	grouping  *grouping.Service
	engine    *eta.Engine
	analytics *analytics.Service
	publisher *publisher.Publisher
	metrics   *metrics.Collector
}

func NewServer(st *store.Store, grp *grouping.Service, engine *eta.Engine, an *analytics.Service, pub *publisher.Publisher, mcol *metrics.Collector) *Server {
	s := &Server{
		app:       fiber.New(),
		store:     st,
		grouping:  grp,
		engine:    engine,
		analytics: an,
		publisher: pub,
		metrics:   mcol,
	}
	s.app.Use(NewLogger())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	trips := s.app.Group("/trips/:tripID")
	trips.Get("/days/:dayID", s.getDay)
	trips.Post("/days/:dayID/regroup", s.postRegroup)
	trips.Post("/days/:dayID/tasks", s.postTask)
	trips.Get("/analytics", s.getAnalytics)

	s.app.Post("/groups/:groupID/location", s.postLocation)

	s.app.Post("/tasks/:taskID/reorder", s.postReorderTask)
	s.app.Delete("/tasks/:taskID", s.deleteTask)
}

// Listen blocks serving HTTP until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
