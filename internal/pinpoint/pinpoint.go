// Package pinpoint defines the core domain types shared by the round engine
// and the game server. It depends only on internal/geo.
package pinpoint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/playperu/pinpoint/internal/geo"
)

// ErrInvalidLevel is wrapped by every error Validate returns.
var ErrInvalidLevel = errors.New("invalid level")

// Location is a place the player has to find on the map.
type Location struct {
	Name           string         `json:"name"`
	Coordinates    geo.Coordinate `json:"coordinates"`
	PositionInList int            `json:"positionInList"`
	ImageURL       string         `json:"imageUrl"`
}

// Level is an ordered list of targets. Order defines progression.
type Level struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Locations []Location `json:"locations"`
}

// Len returns the number of targets in the level.
func (l Level) Len() int { return len(l.Locations) }

// Validate checks that the level is playable: non-empty, every location named
// and inside the coordinate range.
func (l Level) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLevel)
	}
	if len(l.Locations) == 0 {
		return fmt.Errorf("%w: at least one location is required", ErrInvalidLevel)
	}
	for i, loc := range l.Locations {
		if strings.TrimSpace(loc.Name) == "" {
			return fmt.Errorf("%w: location %d: name is required", ErrInvalidLevel, i+1)
		}
		if !loc.Coordinates.Valid() {
			return fmt.Errorf("%w: location %d (%s): coordinates out of range", ErrInvalidLevel, i+1, loc.Name)
		}
	}
	return nil
}

// Renumber sets PositionInList to each location's 1-based ordinal.
func (l *Level) Renumber() {
	for i := range l.Locations {
		l.Locations[i].PositionInList = i + 1
	}
}
