// Package round implements the guessing-round state machine: one target at a
// time, a fixed guess allowance per target, and forward-only progression
// through a level.
//
// A Round is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package round

import (
	"errors"
	"fmt"

	"github.com/playperu/pinpoint/internal/geo"
	"github.com/playperu/pinpoint/internal/pinpoint"
)

var (
	ErrEmptyLevel    = errors.New("level has no locations")
	ErrInvalidConfig = errors.New("invalid round config")
)

const (
	DefaultGuessBudget        = 5
	DefaultSuccessThresholdKm = 0.1
)

// Config holds the tunables for a round.
type Config struct {
	// GuessBudget is the number of guesses allowed per target.
	GuessBudget int `env:"GUESS_BUDGET" envDefault:"5"`
	// SuccessThresholdKm is the distance below which a guess finds the target.
	SuccessThresholdKm float64 `env:"SUCCESS_THRESHOLD_KM" envDefault:"0.1"`
}

func DefaultConfig() Config {
	return Config{
		GuessBudget:        DefaultGuessBudget,
		SuccessThresholdKm: DefaultSuccessThresholdKm,
	}
}

func (c Config) Validate() error {
	if c.GuessBudget <= 0 {
		return fmt.Errorf("%w: guess budget must be positive, got %d", ErrInvalidConfig, c.GuessBudget)
	}
	if !(c.SuccessThresholdKm > 0) {
		return fmt.Errorf("%w: success threshold must be positive, got %v", ErrInvalidConfig, c.SuccessThresholdKm)
	}
	return nil
}

// Round is the mutable state of a level being played.
type Round struct {
	cfg       Config
	locations []pinpoint.Location

	targetIndex      int
	guessesRemaining int
	guessCount       int
	lastGuess        *geo.Coordinate
	lastDistanceKm   *float64
	found            bool
	over             bool
}

// New starts a round on the first location of level. The level's locations
// are copied; later changes to the caller's slice do not affect the round.
func New(level pinpoint.Level, cfg Config) (*Round, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(level.Locations) == 0 {
		return nil, ErrEmptyLevel
	}

	locs := make([]pinpoint.Location, len(level.Locations))
	copy(locs, level.Locations)

	return &Round{
		cfg:              cfg,
		locations:        locs,
		guessesRemaining: cfg.GuessBudget,
	}, nil
}

// GuessResult is what SubmitGuess reports back to the caller.
type GuessResult struct {
	// DistanceKm is the distance of this guess, or the stored last distance
	// when the guess was not scored.
	DistanceKm float64
	// Found reports whether the current target is found after the call.
	Found bool
	// Scored is false when the guess was ignored because the target was
	// already found or the round is over.
	Scored bool

	Target           pinpoint.Location
	GuessCount       int
	GuessesRemaining int
}

// SubmitGuess scores a tap at c against the current target.
//
// Once the target is found, or the round is over, further guesses are not
// counted and leave the state untouched. Otherwise the guess consumes one of
// the remaining guesses (never going below zero), and marks the target found
// when it lands within the success threshold.
func (r *Round) SubmitGuess(c geo.Coordinate) GuessResult {
	if r.over || r.found {
		res := GuessResult{
			Found:            r.found,
			Target:           r.CurrentTarget(),
			GuessCount:       r.guessCount,
			GuessesRemaining: r.guessesRemaining,
		}
		if r.lastDistanceKm != nil {
			res.DistanceKm = *r.lastDistanceKm
		}
		return res
	}

	if r.guessesRemaining > 0 {
		r.guessesRemaining--
	}

	target := r.CurrentTarget()
	d := geo.DistanceKm(c, target.Coordinates)
	guess := c

	r.lastDistanceKm = &d
	r.lastGuess = &guess
	r.guessCount++
	if d < r.cfg.SuccessThresholdKm {
		r.found = true
	}

	return GuessResult{
		DistanceKm:       d,
		Found:            r.found,
		Scored:           true,
		Target:           target,
		GuessCount:       r.guessCount,
		GuessesRemaining: r.guessesRemaining,
	}
}

// AdvanceResult is what Advance reports back to the caller.
type AdvanceResult struct {
	// Target is the current target after the call.
	Target pinpoint.Location
	// Over is true once no targets remain.
	Over bool
	// Changed is true when the call moved to a new target.
	Changed bool
}

// Advance moves to the next target, resetting the per-target state. With no
// next target it ends the round instead and keeps the current index. Calling
// it on a round that is already over does nothing.
//
// Advance does not require the current target to be found; callers gate it.
func (r *Round) Advance() AdvanceResult {
	if r.over {
		return AdvanceResult{Target: r.CurrentTarget(), Over: true}
	}
	if !r.HasNext() {
		r.over = true
		return AdvanceResult{Target: r.CurrentTarget(), Over: true}
	}

	r.targetIndex++
	r.guessesRemaining = r.cfg.GuessBudget
	r.guessCount = 0
	r.lastGuess = nil
	r.lastDistanceKm = nil
	r.found = false

	return AdvanceResult{Target: r.CurrentTarget(), Changed: true}
}

// CurrentTarget returns the location at the current index.
func (r *Round) CurrentTarget() pinpoint.Location {
	return r.locations[r.targetIndex]
}

// HasNext reports whether another target follows the current one.
func (r *Round) HasNext() bool {
	return r.targetIndex+1 < len(r.locations)
}

func (r *Round) TargetIndex() int      { return r.targetIndex }
func (r *Round) TotalTargets() int     { return len(r.locations) }
func (r *Round) GuessesRemaining() int { return r.guessesRemaining }
func (r *Round) GuessCount() int       { return r.guessCount }
func (r *Round) Found() bool           { return r.found }
func (r *Round) Over() bool            { return r.over }
func (r *Round) Config() Config        { return r.cfg }

// LastGuess returns the last scored coordinate for the current target.
func (r *Round) LastGuess() (geo.Coordinate, bool) {
	if r.lastGuess == nil {
		return geo.Coordinate{}, false
	}
	return *r.lastGuess, true
}

// LastDistanceKm returns the distance of the last scored guess for the
// current target.
func (r *Round) LastDistanceKm() (float64, bool) {
	if r.lastDistanceKm == nil {
		return 0, false
	}
	return *r.lastDistanceKm, true
}

// State is a point-in-time copy of a Round.
type State struct {
	Target           pinpoint.Location `json:"target"`
	TargetIndex      int               `json:"targetIndex"`
	TotalTargets     int               `json:"totalTargets"`
	GuessesRemaining int               `json:"guessesRemaining"`
	GuessCount       int               `json:"guessCount"`
	LastGuess        *geo.Coordinate   `json:"lastGuess"`
	LastDistanceKm   *float64          `json:"lastDistanceKm"`
	Found            bool              `json:"found"`
	Over             bool              `json:"over"`
}

func (r *Round) Snapshot() State {
	s := State{
		Target:           r.CurrentTarget(),
		TargetIndex:      r.targetIndex,
		TotalTargets:     len(r.locations),
		GuessesRemaining: r.guessesRemaining,
		GuessCount:       r.guessCount,
		Found:            r.found,
		Over:             r.over,
	}
	if g, ok := r.LastGuess(); ok {
		s.LastGuess = &g
	}
	if d, ok := r.LastDistanceKm(); ok {
		s.LastDistanceKm = &d
	}
	return s
}
