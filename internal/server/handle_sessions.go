package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type CreateSessionRequest struct {
	LevelID string `json:"levelId"`
}

func handleCreateSession(logger *slog.Logger, levels LevelStore, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.LevelID = strings.TrimSpace(req.LevelID)
		if req.LevelID == "" {
			writeError(w, http.StatusBadRequest, "levelId is required")
			return
		}

		lvl, err := levels.GetLevel(r.Context(), req.LevelID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "level not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		sess, err := sessions.Start(lvl)
		if err != nil {
			logger.Error("starting session", "level_id", lvl.ID, "error", err)
			writeError(w, http.StatusUnprocessableEntity, "level cannot be played")
			return
		}

		logger.Info("session started", "session_id", sess.ID, "level_id", lvl.ID)
		writeJSON(w, http.StatusCreated, sess.View())
	}
}

func handleGetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessionFrom(r).View())
	}
}

func handleDeleteSession(sessions *Sessions, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionFrom(r).ID
		if err := sessions.Delete(id); err != nil {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		broker.Expire(id)
		w.WriteHeader(http.StatusOK)
	}
}

func handleGuess(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GuessRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		c, err := req.coordinate()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := sessionFrom(r).Guess(broker, c)
		if err != nil {
			writeError(w, playErrorStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleAdvance(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := sessionFrom(r).Advance(broker)
		if err != nil {
			writeError(w, playErrorStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func playErrorStatus(err error) int {
	switch {
	case errors.Is(err, errInvalidCoordinate):
		return http.StatusBadRequest
	case errors.Is(err, errOutOfGuesses),
		errors.Is(err, errLevelComplete),
		errors.Is(err, errTargetNotFound):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
