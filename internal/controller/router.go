// Package controller exposes the back office over HTTP with fiber.
package controller

import (
	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"github.com/gofiber/fiber/v2"
)

// Register mounts all routes on app.
func Register(app fiber.Router, svc *service.Services) {
	parents := NewParentHandler(svc.Parents)
	students := NewStudentHandler(svc.Students, svc.Subscriptions)
	classes := NewClassHandler(svc.Classes)
	subscriptions := NewSubscriptionHandler(svc.Subscriptions)

	app.Get("/health", func(c *fiber.Ctx) error {
		return Success(c, "ok", nil)
	})

	api := app.Group("/api")

	p := api.Group("/parents")
	p.Get("/", parents.List)
	p.Post("/", parents.Create)
	p.Get("/:id", parents.Get)
	p.Put("/:id", parents.Update)
	p.Delete("/:id", parents.Delete)

	s := api.Group("/students")
	s.Get("/", students.List)
	s.Post("/", students.Create)
	s.Get("/:id", students.Get)
	s.Put("/:id", students.Update)
	s.Delete("/:id", students.Delete)
	s.Get("/:id/subscriptions", students.Subscriptions)

	c := api.Group("/classes")
	c.Get("/", classes.List)
	c.Post("/", classes.Create)
	c.Get("/by-day", classes.ListByDay)
	c.Get("/:id", classes.Get)
	c.Put("/:id", classes.Update)
	c.Delete("/:id", classes.Delete)
	c.Post("/:id/register", classes.Register)

	sub := api.Group("/subscriptions")
	sub.Get("/", subscriptions.List)
	sub.Post("/", subscriptions.Create)
	sub.Get("/:id", subscriptions.Get)
	sub.Delete("/:id", subscriptions.Delete)
	sub.Patch("/:id/use", subscriptions.Use)
}
