package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/pinpoint/internal/pinpoint"
)

type AdminLevelRequest struct {
	Name      string              `json:"name"`
	Locations []pinpoint.Location `json:"locations"`
}

func (req AdminLevelRequest) level() pinpoint.Level {
	return pinpoint.Level{Name: req.Name, Locations: req.Locations}
}

func writeLevelStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pinpoint.ErrInvalidLevel):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "level not found")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "a level with that name already exists")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func handleAdminGetLevel(levels LevelStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lvl, err := levels.GetLevel(r.Context(), chi.URLParam(r, "levelID"))
		if err != nil {
			writeLevelStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lvl)
	}
}

func handleAdminCreateLevel(levels LevelStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLevelRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		lvl, err := levels.CreateLevel(r.Context(), req.level())
		if err != nil {
			writeLevelStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, lvl)
	}
}

// handleAdminUpdateLevel replaces a level. Sessions already running keep the
// copy they started with.
func handleAdminUpdateLevel(levels LevelStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLevelRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		lvl, err := levels.UpdateLevel(r.Context(), chi.URLParam(r, "levelID"), req.level())
		if err != nil {
			writeLevelStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lvl)
	}
}

func handleAdminDeleteLevel(levels LevelStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := levels.DeleteLevel(r.Context(), chi.URLParam(r, "levelID")); err != nil {
			writeLevelStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
