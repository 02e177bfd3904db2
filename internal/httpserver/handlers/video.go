package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
)

type videoResponse struct {
	Contest string  `json:"contest"`
	URL     *string `json:"url"`
}

// Video resolves the explanation video of a contest by name. A contest with
// no match answers 200 with a null url.
func Video(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("contest"))
		if name == "" {
			writeError(d, w, http.StatusBadRequest, "missing contest parameter")
			return
		}

		resp := videoResponse{Contest: name}
		if url, ok := d.Videos.Resolve(r.Context(), name); ok {
			resp.URL = &url
		}
		writeJSON(d, w, http.StatusOK, resp)
	}
}
