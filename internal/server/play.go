package server

import (
	"errors"
	"fmt"

	"github.com/playperu/pinpoint/internal/geo"
)

// Session statuses, as seen by the front-end to pick a screen.
const (
	StatusGuessing = "guessing"
	StatusFound    = "found"
	StatusLost     = "lost"
	StatusWon      = "won"
)

var (
	errInvalidCoordinate = errors.New("coordinates out of range")
	errOutOfGuesses      = errors.New("out of guesses")
	errLevelComplete     = errors.New("level complete")
	errTargetNotFound    = errors.New("current target not found yet")
)

type TargetInfo struct {
	Name           string `json:"name"`
	PositionInList int    `json:"positionInList"`
	ImageURL       string `json:"imageUrl,omitempty"`
}

type SessionResponse struct {
	ID               string          `json:"id"`
	LevelID          string          `json:"levelId"`
	LevelName        string          `json:"levelName"`
	Status           string          `json:"status"`
	Target           TargetInfo      `json:"target"`
	Progress         string          `json:"progress"`
	TotalTargets     int             `json:"totalTargets"`
	GuessesRemaining int             `json:"guessesRemaining"`
	GuessCount       int             `json:"guessCount"`
	LastGuess        *geo.Coordinate `json:"lastGuess"`
	LastDistanceKm   *float64        `json:"lastDistanceKm"`
	Message          string          `json:"message"`
}

type GuessRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (g GuessRequest) coordinate() (geo.Coordinate, error) {
	if g.Latitude == nil || g.Longitude == nil {
		return geo.Coordinate{}, errors.New("latitude and longitude are required")
	}
	c := geo.Coordinate{Latitude: *g.Latitude, Longitude: *g.Longitude}
	if !c.Valid() {
		return geo.Coordinate{}, errInvalidCoordinate
	}
	return c, nil
}

type GuessResponse struct {
	DistanceKm float64         `json:"distanceKm"`
	Found      bool            `json:"found"`
	Scored     bool            `json:"scored"`
	Session    SessionResponse `json:"session"`
}

type AdvanceResponse struct {
	Over    bool            `json:"over"`
	Session SessionResponse `json:"session"`
}

// status derives what the player is looking at. Running out of guesses is
// decided here, not by the round.
func (s *Session) status() string {
	switch {
	case s.round.Over():
		return StatusWon
	case s.round.Found():
		return StatusFound
	case s.round.GuessesRemaining() == 0:
		return StatusLost
	default:
		return StatusGuessing
	}
}

func (s *Session) view() SessionResponse {
	st := s.round.Snapshot()
	status := s.status()

	target := TargetInfo{
		Name:           st.Target.Name,
		PositionInList: st.Target.PositionInList,
	}
	if st.Found {
		target.ImageURL = st.Target.ImageURL
	}

	var msg string
	switch status {
	case StatusWon:
		msg = fmt.Sprintf("You found all %d locations!", st.TotalTargets)
	case StatusFound:
		msg = fmt.Sprintf("You found %s in %d guesses!", st.Target.Name, st.GuessCount)
	case StatusLost:
		msg = fmt.Sprintf("Out of guesses! %s got away.", st.Target.Name)
	default:
		if st.LastDistanceKm != nil {
			msg = fmt.Sprintf("Distance to %s: %.2f km", st.Target.Name, *st.LastDistanceKm)
		}
	}

	return SessionResponse{
		ID:               s.ID,
		LevelID:          s.LevelID,
		LevelName:        s.LevelName,
		Status:           status,
		Target:           target,
		Progress:         fmt.Sprintf("Location %d of %d", st.TargetIndex+1, st.TotalTargets),
		TotalTargets:     st.TotalTargets,
		GuessesRemaining: st.GuessesRemaining,
		GuessCount:       st.GuessCount,
		LastGuess:        st.LastGuess,
		LastDistanceKm:   st.LastDistanceKm,
		Message:          msg,
	}
}

// View returns the session as the front-end sees it.
func (s *Session) View() SessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Guess scores c against the current target and publishes the resulting
// events. Guesses on a lost or finished session are rejected.
func (s *Session) Guess(b *Broker, c geo.Coordinate) (GuessResponse, error) {
	if !c.Valid() {
		return GuessResponse{}, errInvalidCoordinate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	switch s.status() {
	case StatusWon:
		return GuessResponse{}, errLevelComplete
	case StatusLost:
		return GuessResponse{}, errOutOfGuesses
	}

	res := s.round.SubmitGuess(c)
	resp := GuessResponse{
		DistanceKm: res.DistanceKm,
		Found:      res.Found,
		Scored:     res.Scored,
		Session:    s.view(),
	}
	if !res.Scored {
		return resp, nil
	}

	d, left := res.DistanceKm, res.GuessesRemaining
	events := []SSEEvent{{
		Type:             EventGuess,
		TargetName:       res.Target.Name,
		Position:         res.Target.PositionInList,
		DistanceKm:       &d,
		GuessCount:       res.GuessCount,
		GuessesRemaining: &left,
	}}
	switch resp.Session.Status {
	case StatusFound:
		events = append(events, SSEEvent{
			Type:       EventTargetFound,
			TargetName: res.Target.Name,
			Position:   res.Target.PositionInList,
			GuessCount: res.GuessCount,
		})
	case StatusLost:
		events = append(events, SSEEvent{
			Type:       EventOutOfGuesses,
			TargetName: res.Target.Name,
			Position:   res.Target.PositionInList,
		})
	}
	b.Publish(s.ID, events...)

	return resp, nil
}

// Advance moves past a found target. When it was the last one, the level is
// complete.
func (s *Session) Advance(b *Broker) (AdvanceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	switch s.status() {
	case StatusWon:
		return AdvanceResponse{}, errLevelComplete
	case StatusLost:
		return AdvanceResponse{}, errOutOfGuesses
	case StatusGuessing:
		return AdvanceResponse{}, errTargetNotFound
	}

	res := s.round.Advance()
	if res.Over {
		b.Publish(s.ID, SSEEvent{Type: EventLevelComplete})
	} else {
		left := s.round.GuessesRemaining()
		b.Publish(s.ID, SSEEvent{
			Type:             EventTargetChanged,
			TargetName:       res.Target.Name,
			Position:         res.Target.PositionInList,
			GuessesRemaining: &left,
		})
	}

	return AdvanceResponse{Over: res.Over, Session: s.view()}, nil
}
