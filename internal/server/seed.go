package server

import (
	"context"
	"log/slog"

	"github.com/playperu/pinpoint/internal/geo"
	"github.com/playperu/pinpoint/internal/pinpoint"
)

// DemoLevel is the level seeded into an empty database.
func DemoLevel() pinpoint.Level {
	return pinpoint.Level{
		Name: "Edinburgh",
		Locations: []pinpoint.Location{
			{Name: "Edinburgh Castle", Coordinates: geo.Coordinate{Latitude: 55.9486, Longitude: -3.1999}},
			{Name: "Scott Monument", Coordinates: geo.Coordinate{Latitude: 55.9524, Longitude: -3.1933}},
			{Name: "Calton Hill", Coordinates: geo.Coordinate{Latitude: 55.9553, Longitude: -3.1826}},
			{Name: "Arthur's Seat", Coordinates: geo.Coordinate{Latitude: 55.9441, Longitude: -3.1618}},
			{Name: "Murrayfield Stadium", Coordinates: geo.Coordinate{Latitude: 55.9422, Longitude: -3.2409}},
		},
	}
}

// SeedDemo creates the demo level if no levels exist.
// Idempotent: does nothing if levels already exist.
func SeedDemo(ctx context.Context, logger *slog.Logger, levels LevelStore) error {
	existing, err := levels.ListLevels(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	lvl, err := levels.CreateLevel(ctx, DemoLevel())
	if err != nil {
		return err
	}

	logger.Info("demo level seeded", "level_id", lvl.ID, "locations", lvl.Len())
	return nil
}
