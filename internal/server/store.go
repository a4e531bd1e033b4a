package server

import (
	"context"
	"errors"

	"github.com/playperu/pinpoint/internal/pinpoint"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// LevelSummary is the list view of a level.
type LevelSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LocationCount int    `json:"locationCount"`
	CreatedAt     string `json:"createdAt"`
}

// LevelStore is the level provider: it supplies the ordered target lists
// sessions are started from.
type LevelStore interface {
	ListLevels(ctx context.Context) ([]LevelSummary, error)
	GetLevel(ctx context.Context, id string) (pinpoint.Level, error)
	CreateLevel(ctx context.Context, lvl pinpoint.Level) (pinpoint.Level, error)
	UpdateLevel(ctx context.Context, id string, lvl pinpoint.Level) (pinpoint.Level, error)
	DeleteLevel(ctx context.Context, id string) error
}
