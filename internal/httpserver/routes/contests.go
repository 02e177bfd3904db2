package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerContests) }

func registerContests(r chi.Router, d deps.Deps) {
	r.Get("/contests", handlers.Contests(d))
	r.Get("/status", handlers.Status(d))
}
