package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// LevelLocation is a target as players see it before finding it.
type LevelLocation struct {
	Name           string `json:"name"`
	PositionInList int    `json:"positionInList"`
}

type LevelDetail struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Locations []LevelLocation `json:"locations"`
}

func handleListLevels(levels LevelStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := levels.ListLevels(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// handleGetLevel never exposes coordinates.
func handleGetLevel(levels LevelStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lvl, err := levels.GetLevel(r.Context(), chi.URLParam(r, "levelID"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "level not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := LevelDetail{
			ID:        lvl.ID,
			Name:      lvl.Name,
			Locations: make([]LevelLocation, 0, len(lvl.Locations)),
		}
		for _, loc := range lvl.Locations {
			resp.Locations = append(resp.Locations, LevelLocation{
				Name:           loc.Name,
				PositionInList: loc.PositionInList,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
