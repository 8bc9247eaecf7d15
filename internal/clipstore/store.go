// Package clipstore persists animation clips to sqlite. Clips are stored as
// their canonical JSON form with a few indexed columns for listing; the
// schema is managed by golang-migrate (see db/migrations).
package clipstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/motion.report/internal/clip"
)

// Store defines the clip persistence operations.
type Store interface {
	SaveClip(ctx context.Context, c clip.Clip) (string, error)
	GetClip(ctx context.Context, id string) (clip.Clip, error)
	ListClips(ctx context.Context, limit int) ([]ClipInfo, error)
	DeleteClip(ctx context.Context, id string) error
}

// ClipInfo is the listing row for a stored clip.
type ClipInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Duration  float64   `json:"duration"`
	Tracks    int       `json:"tracks"`
	CreatedAt time.Time `json:"created_at"`
}

// SQLStore implements Store over a sql.DB (sqlite).
type SQLStore struct {
	db *sql.DB
}

// New returns a store over an opened database. Run Migrate first.
func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// SaveClip validates and stores the clip, returning its new ID.
func (s *SQLStore) SaveClip(ctx context.Context, c clip.Clip) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("save clip: %w", err)
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal clip %q: %w", c.Name, err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clips (clip_id, name, duration, track_count, payload)
		VALUES (?, ?, ?, ?, ?)
	`, id, c.Name, c.Duration, len(c.Tracks), payload)
	if err != nil {
		return "", fmt.Errorf("insert clip %q: %w", c.Name, err)
	}
	return id, nil
}

// GetClip loads one clip by ID.
func (s *SQLStore) GetClip(ctx context.Context, id string) (clip.Clip, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM clips WHERE clip_id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return clip.Clip{}, fmt.Errorf("clip %s: not found", id)
	}
	if err != nil {
		return clip.Clip{}, fmt.Errorf("get clip %s: %w", id, err)
	}
	var c clip.Clip
	if err := json.Unmarshal(payload, &c); err != nil {
		return clip.Clip{}, fmt.Errorf("unmarshal clip %s: %w", id, err)
	}
	return c, nil
}

// ListClips returns the most recent clips, newest first.
func (s *SQLStore) ListClips(ctx context.Context, limit int) ([]ClipInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT clip_id, name, duration, track_count, created_at
		FROM clips ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var out []ClipInfo
	for rows.Next() {
		var info ClipInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Duration, &info.Tracks, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan clip row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteClip removes a stored clip.
func (s *SQLStore) DeleteClip(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clips WHERE clip_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete clip %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("clip %s: not found", id)
	}
	return nil
}
