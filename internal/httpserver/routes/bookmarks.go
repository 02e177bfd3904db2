package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/handlers"
)

func init() { RegisterAPI(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Get("/bookmarks", handlers.Bookmarks(d))
	r.Post("/bookmarks/toggle", handlers.ToggleBookmark(d))
}
