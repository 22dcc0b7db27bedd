package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/taskmanager/pkg/app"
	"github.com/ghuser/taskmanager/services/task/application/handlers"
	appsvcs "github.com/ghuser/taskmanager/services/task/application/services"
)

// TaskRoutes registers the task endpoints on the provided chi router.
func TaskRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			h := handlers.NewItemHandler(svcs)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Patch("/{id}", h.Patch)
			r.Delete("/{id}", h.Delete)
		})
		r.Route("/tags", func(r chi.Router) {
			h := handlers.NewTagHandler(svcs)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Patch("/{id}", h.Patch)
			r.Delete("/{id}", h.Delete)
		})
		r.Route("/persons", func(r chi.Router) {
			h := handlers.NewPersonHandler(svcs)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Patch("/{id}", h.Patch)
			r.Delete("/{id}", h.Delete)
		})
		r.Route("/users", func(r chi.Router) {
			h := handlers.NewUserHandler(svcs)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Patch("/{id}", h.Patch)
			r.Delete("/{id}", h.Delete)
		})
	})
}
