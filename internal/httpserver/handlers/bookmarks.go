package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/contesthub/internal/bookmarks"
	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/index"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

const maxToggleBody = 4 << 10

type bookmarksResponse struct {
	Owner    string           `json:"owner"`
	Keys     []string         `json:"keys"`
	Contests []domain.Contest `json:"contests"`
}

type toggleRequest struct {
	Key string `json:"key"`
}

type toggleResponse struct {
	Owner      string   `json:"owner"`
	Key        string   `json:"key"`
	Bookmarked bool     `json:"bookmarked"`
	Keys       []string `json:"keys"`
}

func owner(r *http.Request) string {
	if o := r.URL.Query().Get("owner"); o != "" {
		return o
	}
	return bookmarks.DefaultOwner
}

// Bookmarks returns the owner's bookmark keys and the contests they resolve
// to in the current index. Keys of contests no longer listed are kept.
func Bookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o := owner(r)
		set := d.Bookmarks.Load(r.Context(), o)

		contests := bookmarks.Resolve(set, d.MemoryIndex.Query(index.Filter{}, d.Now()))
		writeJSON(d, w, http.StatusOK, bookmarksResponse{
			Owner:    o,
			Keys:     set.Keys(),
			Contests: contests,
		})
	}
}

// ToggleBookmark adds the key when absent, removes it otherwise.
func ToggleBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleRequest
		body := http.MaxBytesReader(w, r.Body, maxToggleBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(d, w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		o := owner(r)
		set, added, err := d.Bookmarks.Toggle(r.Context(), o, req.Key)
		switch {
		case errors.Is(err, bookmarks.ErrEmptyKey):
			writeError(d, w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			d.Logger.Error("bookmark toggle failed",
				logger.String("owner", o), logger.String("key", req.Key), logger.Error(err))
			writeError(d, w, http.StatusInternalServerError, "failed to persist bookmarks")
			return
		}

		writeJSON(d, w, http.StatusOK, toggleResponse{
			Owner:      o,
			Key:        strings.TrimSpace(req.Key),
			Bookmarked: added,
			Keys:       set.Keys(),
		})
	}
}
