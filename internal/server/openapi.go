package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/pinpoint/internal/handler/health"
	"github.com/playperu/pinpoint/internal/pinpoint"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type sessionPath struct {
	SessionID string `path:"sessionID"`
}

type levelPath struct {
	LevelID string `path:"levelID"`
}

type guessInput struct {
	SessionID string   `path:"sessionID"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type levelUpdateInput struct {
	LevelID   string              `path:"levelID"`
	Name      string              `json:"name"`
	Locations []pinpoint.Location `json:"locations"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Pinpoint API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Pinpoint map guessing game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies and the number of active sessions.")
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/levels
	listLevels, _ := r.NewOperationContext(http.MethodGet, "/api/levels")
	listLevels.SetSummary("List levels")
	listLevels.SetDescription("Returns all playable levels with their location counts.")
	listLevels.AddRespStructure([]LevelSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listLevels)

	// GET /api/levels/{levelID}
	getLevel, _ := r.NewOperationContext(http.MethodGet, "/api/levels/{levelID}")
	getLevel.SetSummary("Get level")
	getLevel.SetDescription("Returns a level's target names in play order. Coordinates are not included.")
	getLevel.AddReqStructure(levelPath{})
	getLevel.AddRespStructure(LevelDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	getLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getLevel)

	// POST /api/sessions
	createSession, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	createSession.SetSummary("Start session")
	createSession.SetDescription("Starts a new game session on the first location of a level.")
	createSession.AddReqStructure(CreateSessionRequest{})
	createSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	createSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(createSession)

	// GET /api/sessions/{sessionID}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}")
	getSession.SetSummary("Get session")
	getSession.SetDescription("Returns the current target, guesses remaining, and status of a session.")
	getSession.AddReqStructure(sessionPath{})
	getSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// DELETE /api/sessions/{sessionID}
	deleteSession, _ := r.NewOperationContext(http.MethodDelete, "/api/sessions/{sessionID}")
	deleteSession.SetSummary("End session")
	deleteSession.SetDescription("Discards a session and its progress.")
	deleteSession.AddReqStructure(sessionPath{})
	deleteSession.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteSession)

	// POST /api/sessions/{sessionID}/guesses
	postGuess, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/guesses")
	postGuess.SetSummary("Submit guess")
	postGuess.SetDescription("Scores a map tap against the current target. Guesses after the target is found are not counted.")
	postGuess.AddReqStructure(guessInput{})
	postGuess.AddRespStructure(GuessResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postGuess)

	// POST /api/sessions/{sessionID}/advance
	postAdvance, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/advance")
	postAdvance.SetSummary("Next location")
	postAdvance.SetDescription("Moves past a found target. Completes the level after the last target.")
	postAdvance.AddReqStructure(sessionPath{})
	postAdvance.AddRespStructure(AdvanceResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAdvance.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postAdvance.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAdvance)

	// GET /api/sessions/{sessionID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events for guesses, found targets, target changes, and level completion.")
	getEvents.AddReqStructure(sessionPath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/sessions/{sessionID}
	getPlayWS, _ := r.NewOperationContext(http.MethodGet, "/ws/sessions/{sessionID}")
	getPlayWS.SetSummary("Play over WebSocket")
	getPlayWS.SetDescription("Upgrades to a WebSocket that accepts guess and advance frames and replies with their results.")
	getPlayWS.AddReqStructure(sessionPath{})
	getPlayWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("application/json"))
	_ = r.AddOperation(getPlayWS)

	// GET /api/admin/levels
	adminListLevels, _ := r.NewOperationContext(http.MethodGet, "/api/admin/levels")
	adminListLevels.SetSummary("List levels (admin)")
	adminListLevels.SetDescription("Returns all levels with their location counts. Requires HTTP Basic admin credentials.")
	adminListLevels.AddRespStructure([]LevelSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	adminListLevels.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(adminListLevels)

	// POST /api/admin/levels
	createLevel, _ := r.NewOperationContext(http.MethodPost, "/api/admin/levels")
	createLevel.SetSummary("Create level")
	createLevel.SetDescription("Creates a level. Requires HTTP Basic admin credentials.")
	createLevel.AddReqStructure(AdminLevelRequest{})
	createLevel.AddRespStructure(pinpoint.Level{}, openapi.WithHTTPStatus(http.StatusCreated))
	createLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	createLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(createLevel)

	// GET /api/admin/levels/{levelID}
	adminGetLevel, _ := r.NewOperationContext(http.MethodGet, "/api/admin/levels/{levelID}")
	adminGetLevel.SetSummary("Get level with coordinates")
	adminGetLevel.SetDescription("Returns a level including target coordinates. Requires HTTP Basic admin credentials.")
	adminGetLevel.AddReqStructure(levelPath{})
	adminGetLevel.AddRespStructure(pinpoint.Level{}, openapi.WithHTTPStatus(http.StatusOK))
	adminGetLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	adminGetLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(adminGetLevel)

	// PUT /api/admin/levels/{levelID}
	updateLevel, _ := r.NewOperationContext(http.MethodPut, "/api/admin/levels/{levelID}")
	updateLevel.SetSummary("Update level")
	updateLevel.SetDescription("Replaces a level's name and locations. Running sessions are not affected.")
	updateLevel.AddReqStructure(levelUpdateInput{})
	updateLevel.AddRespStructure(pinpoint.Level{}, openapi.WithHTTPStatus(http.StatusOK))
	updateLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updateLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	updateLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(updateLevel)

	// DELETE /api/admin/levels/{levelID}
	deleteLevel, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/levels/{levelID}")
	deleteLevel.SetSummary("Delete level")
	deleteLevel.SetDescription("Deletes a level. Running sessions are not affected.")
	deleteLevel.AddReqStructure(levelPath{})
	deleteLevel.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteLevel.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteLevel)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
