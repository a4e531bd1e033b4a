package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/pinpoint/internal/pinpoint"
)

// levelDoc is the JSONB document stored per level.
type levelDoc struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Locations []pinpoint.Location `json:"locations"`
	CreatedAt string              `json:"createdAt"`
}

func (d levelDoc) level() pinpoint.Level {
	return pinpoint.Level{ID: d.ID, Name: d.Name, Locations: d.Locations}
}

// LevelDocStore implements LevelStore on the levels table. The schema is
// owned by the migrations package.
type LevelDocStore struct {
	db *sql.DB
}

func NewLevelDocStore(db *sql.DB) *LevelDocStore {
	return &LevelDocStore{db: db}
}

func (s *LevelDocStore) ListLevels(ctx context.Context) ([]LevelSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json(data) FROM levels ORDER BY created_at, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing levels: %w", err)
	}
	defer rows.Close()

	levels := []LevelSummary{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var d levelDoc
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, err
		}
		levels = append(levels, LevelSummary{
			ID:            d.ID,
			Name:          d.Name,
			LocationCount: len(d.Locations),
			CreatedAt:     d.CreatedAt,
		})
	}
	return levels, rows.Err()
}

func (s *LevelDocStore) GetLevel(ctx context.Context, id string) (pinpoint.Level, error) {
	d, err := s.get(ctx, id)
	if err != nil {
		return pinpoint.Level{}, err
	}
	return d.level(), nil
}

func (s *LevelDocStore) CreateLevel(ctx context.Context, lvl pinpoint.Level) (pinpoint.Level, error) {
	if err := lvl.Validate(); err != nil {
		return pinpoint.Level{}, err
	}
	lvl.Renumber()

	d := levelDoc{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(lvl.Name),
		Locations: lvl.Locations,
		CreatedAt: nowUTC(),
	}
	if err := s.put(ctx, d); err != nil {
		return pinpoint.Level{}, err
	}
	return d.level(), nil
}

func (s *LevelDocStore) UpdateLevel(ctx context.Context, id string, lvl pinpoint.Level) (pinpoint.Level, error) {
	d, err := s.get(ctx, id)
	if err != nil {
		return pinpoint.Level{}, err
	}
	if err := lvl.Validate(); err != nil {
		return pinpoint.Level{}, err
	}
	lvl.Renumber()
	d.Name = strings.TrimSpace(lvl.Name)
	d.Locations = lvl.Locations

	if err := s.put(ctx, d); err != nil {
		return pinpoint.Level{}, err
	}
	return d.level(), nil
}

func (s *LevelDocStore) DeleteLevel(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM levels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting level: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *LevelDocStore) get(ctx context.Context, id string) (levelDoc, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM levels WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return levelDoc{}, ErrNotFound
	}
	if err != nil {
		return levelDoc{}, fmt.Errorf("loading level %q: %w", id, err)
	}

	var d levelDoc
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return levelDoc{}, fmt.Errorf("decoding level %q: %w", id, err)
	}
	return d, nil
}

func (s *LevelDocStore) put(ctx context.Context, d levelDoc) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO levels (id, name, created_at, data) VALUES (?, ?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data`,
		d.ID, d.Name, d.CreatedAt, string(data),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return fmt.Errorf("%w: level name %q already exists", ErrConflict, d.Name)
	}
	return err
}

func nowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
