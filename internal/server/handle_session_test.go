package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/pinpoint/internal/database"
	"github.com/playperu/pinpoint/internal/geo"
	"github.com/playperu/pinpoint/internal/handler/health"
	"github.com/playperu/pinpoint/internal/migrations"
	"github.com/playperu/pinpoint/internal/pinpoint"
	"github.com/playperu/pinpoint/internal/round"
)

func setupLevels(t *testing.T) *LevelDocStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewLevelDocStore(db)
}

// twoStopLevel has targets A@(55.95,-3.19) and B@(55.90,-3.20).
func twoStopLevel() pinpoint.Level {
	return pinpoint.Level{
		Name: "Two Stops",
		Locations: []pinpoint.Location{
			{Name: "A", Coordinates: geo.Coordinate{Latitude: 55.95, Longitude: -3.19}, ImageURL: "a.jpg"},
			{Name: "B", Coordinates: geo.Coordinate{Latitude: 55.90, Longitude: -3.20}},
		},
	}
}

type testEnv struct {
	router   *chi.Mux
	levels   *LevelDocStore
	sessions *Sessions
	broker   *Broker
	levelID  string
}

func newTestEnv(t *testing.T, adminHash string) *testEnv {
	t.Helper()
	levels := setupLevels(t)

	lvl, err := levels.CreateLevel(context.Background(), twoStopLevel())
	if err != nil {
		t.Fatalf("create level: %v", err)
	}

	env := &testEnv{
		router:   chi.NewRouter(),
		levels:   levels,
		sessions: NewSessions(round.DefaultConfig()),
		broker:   NewBroker(),
		levelID:  lvl.ID,
	}
	addRoutes(env.router, slog.Default(), Deps{
		Levels:            levels,
		Sessions:          env.sessions,
		Broker:            env.broker,
		AdminPasswordHash: adminHash,
		Checks: map[string]health.Checker{
			"sqlite": health.CheckerFunc(func(ctx context.Context) error { return nil }),
		},
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) startSession(t *testing.T) SessionResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions", CreateSessionRequest{LevelID: e.levelID})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp SessionResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func (e *testEnv) guess(t *testing.T, sessionID string, lat, lng float64) (*httptest.ResponseRecorder, GuessResponse) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/guesses", GuessRequest{Latitude: &lat, Longitude: &lng})
	var resp GuessResponse
	if w.Code == http.StatusOK {
		json.NewDecoder(w.Body).Decode(&resp)
	}
	return w, resp
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t, "")

	s := env.startSession(t)

	if s.ID == "" {
		t.Fatal("expected session id")
	}
	if s.Status != StatusGuessing {
		t.Errorf("status = %q, want %q", s.Status, StatusGuessing)
	}
	if s.Target.Name != "A" {
		t.Errorf("target = %q, want A", s.Target.Name)
	}
	if s.Target.ImageURL != "" {
		t.Errorf("image should be hidden until found, got %q", s.Target.ImageURL)
	}
	if s.Progress != "Location 1 of 2" {
		t.Errorf("progress = %q", s.Progress)
	}
	if s.GuessesRemaining != 5 {
		t.Errorf("guessesRemaining = %d, want 5", s.GuessesRemaining)
	}
	if s.LastDistanceKm != nil || s.LastGuess != nil {
		t.Error("expected no last guess on a new session")
	}
	if env.sessions.Len() != 1 {
		t.Errorf("sessions = %d, want 1", env.sessions.Len())
	}
}

func TestCreateSessionErrors(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing level", CreateSessionRequest{}, http.StatusBadRequest},
		{"unknown level", CreateSessionRequest{LevelID: "nope"}, http.StatusNotFound},
		{"unknown field", map[string]string{"level": "x"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/sessions", tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestPlayThroughLevel(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.startSession(t)

	// Close to A: found.
	w, g := env.guess(t, s.ID, 55.9501, -3.1899)
	if w.Code != http.StatusOK {
		t.Fatalf("guess: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !g.Found || !g.Scored {
		t.Fatalf("expected scored found guess, got %+v", g)
	}
	if g.DistanceKm >= 0.1 {
		t.Errorf("distance = %f, want < 0.1", g.DistanceKm)
	}
	if g.Session.Status != StatusFound {
		t.Errorf("status = %q, want found", g.Session.Status)
	}
	if g.Session.Message != "You found A in 1 guesses!" {
		t.Errorf("message = %q", g.Session.Message)
	}
	if g.Session.Target.ImageURL != "a.jpg" {
		t.Errorf("imageUrl = %q, want a.jpg", g.Session.Target.ImageURL)
	}

	// Further taps are not counted.
	_, again := env.guess(t, s.ID, 0, 0)
	if again.Scored {
		t.Error("guess after found should not be scored")
	}
	if again.Session.GuessCount != 1 || again.Session.GuessesRemaining != 4 {
		t.Errorf("counters changed: %+v", again.Session)
	}

	// Advance to B.
	w = env.do(t, http.MethodPost, "/api/sessions/"+s.ID+"/advance", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("advance: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var adv AdvanceResponse
	json.NewDecoder(w.Body).Decode(&adv)
	if adv.Over {
		t.Fatal("level should not be over after first target")
	}
	if adv.Session.Target.Name != "B" || adv.Session.GuessesRemaining != 5 || adv.Session.Status != StatusGuessing {
		t.Errorf("unexpected session after advance: %+v", adv.Session)
	}

	// Far miss on B.
	_, g = env.guess(t, s.ID, 0, 0)
	if g.Found {
		t.Error("far guess should not find B")
	}
	if g.Session.GuessesRemaining != 4 {
		t.Errorf("guessesRemaining = %d, want 4", g.Session.GuessesRemaining)
	}
	if g.DistanceKm < 6000 {
		t.Errorf("distance = %f, want > 6000", g.DistanceKm)
	}

	// Find B, then finish the level.
	_, g = env.guess(t, s.ID, 55.90, -3.20)
	if !g.Found {
		t.Fatal("exact guess should find B")
	}
	w = env.do(t, http.MethodPost, "/api/sessions/"+s.ID+"/advance", nil)
	json.NewDecoder(w.Body).Decode(&adv)
	if !adv.Over || adv.Session.Status != StatusWon {
		t.Errorf("expected level complete, got %+v", adv)
	}
	if adv.Session.Target.Name != "B" {
		t.Errorf("target should stay on B, got %q", adv.Session.Target.Name)
	}

	// Nothing more to do.
	w, _ = env.guess(t, s.ID, 55.90, -3.20)
	if w.Code != http.StatusConflict {
		t.Errorf("guess after win: expected 409, got %d", w.Code)
	}
	w = env.do(t, http.MethodPost, "/api/sessions/"+s.ID+"/advance", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("advance after win: expected 409, got %d", w.Code)
	}
}

func TestOutOfGuesses(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.startSession(t)

	var g GuessResponse
	for i := 0; i < 5; i++ {
		var w *httptest.ResponseRecorder
		w, g = env.guess(t, s.ID, 0, 0)
		if w.Code != http.StatusOK {
			t.Fatalf("guess %d: expected 200, got %d", i+1, w.Code)
		}
		if g.Session.GuessesRemaining != 4-i {
			t.Errorf("guess %d: guessesRemaining = %d, want %d", i+1, g.Session.GuessesRemaining, 4-i)
		}
	}
	if g.Found {
		t.Error("misses should not find the target")
	}
	if g.Session.Status != StatusLost {
		t.Errorf("status = %q, want lost", g.Session.Status)
	}

	w, _ := env.guess(t, s.ID, 55.95, -3.19)
	if w.Code != http.StatusConflict {
		t.Errorf("guess after loss: expected 409, got %d", w.Code)
	}
}

func TestGuessValidation(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.startSession(t)

	tests := []struct {
		name string
		body any
	}{
		{"latitude out of range", map[string]float64{"latitude": 95, "longitude": 0}},
		{"longitude out of range", map[string]float64{"latitude": 0, "longitude": 200}},
		{"missing longitude", map[string]float64{"latitude": 10}},
		{"not json", "nonsense"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/sessions/"+s.ID+"/guesses", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}

	got := env.do(t, http.MethodGet, "/api/sessions/"+s.ID, nil)
	var view SessionResponse
	json.NewDecoder(got.Body).Decode(&view)
	if view.GuessesRemaining != 5 {
		t.Errorf("rejected guesses must not count, guessesRemaining = %d", view.GuessesRemaining)
	}
}

func TestAdvanceBeforeFound(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.startSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+s.ID+"/advance", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestMissMessage(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.startSession(t)

	_, g := env.guess(t, s.ID, 55.96, -3.19)
	want := "Distance to A: 1.11 km"
	if g.Session.Message != want {
		t.Errorf("message = %q, want %q", g.Session.Message, want)
	}
}

func TestDeleteSession(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.startSession(t)

	w := env.do(t, http.MethodDelete, "/api/sessions/"+s.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/sessions/"+s.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestGuessPublishesEvents(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.startSession(t)

	ch := env.broker.Subscribe(s.ID)
	defer env.broker.Unsubscribe(s.ID, ch)

	env.guess(t, s.ID, 55.95, -3.19)
	env.do(t, http.MethodPost, "/api/sessions/"+s.ID+"/advance", nil)

	want := []string{EventGuess, EventTargetFound, EventTargetChanged}
	for _, typ := range want {
		var ev SSEEvent
		select {
		case data := <-ch:
			json.Unmarshal(data, &ev)
		default:
			t.Fatalf("missing %q event", typ)
		}
		if ev.Type != typ {
			t.Errorf("event = %q, want %q", ev.Type, typ)
		}
		if typ == EventTargetChanged && ev.TargetName != "B" {
			t.Errorf("target_changed name = %q, want B", ev.TargetName)
		}
	}
}

func TestLevelEndpointsHideCoordinates(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodGet, "/api/levels", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list []LevelSummary
	json.NewDecoder(w.Body).Decode(&list)
	if len(list) != 1 || list[0].LocationCount != 2 {
		t.Fatalf("unexpected levels: %+v", list)
	}

	w = env.do(t, http.MethodGet, "/api/levels/"+env.levelID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("latitude")) {
		t.Errorf("level detail leaks coordinates: %s", w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/levels/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing level: expected 404, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, "")
	env.startSession(t)

	w := env.do(t, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body health.Response
	json.NewDecoder(w.Body).Decode(&body)
	if body.Gauges["sessions"] != 1 {
		t.Errorf("sessions gauge = %d, want 1", body.Gauges["sessions"])
	}
}
