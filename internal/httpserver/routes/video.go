package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerVideo) }

func registerVideo(r chi.Router, d deps.Deps) {
	r.Get("/video", handlers.Video(d))
}
