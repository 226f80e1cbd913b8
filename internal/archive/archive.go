package archive

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/breakshot/backend/internal/room"
)

// Recorder persists finished matches and per-shot history to PostgreSQL.
// The server runs without a database in development, so every method
// tolerates a nil receiver or nil handle and records nothing.
type Recorder struct {
	db *sqlx.DB
}

var _ room.Archiver = (*Recorder)(nil)

func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) RecordShot(ctx context.Context, rec room.ShotRecord) error {
	if r == nil || r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO match_shots (room_id, player_id, power, angle, outcome, potted_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		rec.RoomID, rec.PlayerID, rec.Power, rec.Angle, rec.Outcome, rec.Potted,
	)
	return err
}

func (r *Recorder) RecordMatch(ctx context.Context, rec room.MatchRecord) error {
	if r == nil || r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO match_history (room_id, winner_id, reason, ended_at)
		 VALUES ($1, $2, $3, NOW())`,
		rec.RoomID, rec.WinnerID, rec.Reason,
	)
	return err
}

// Match is one archived match row.
type Match struct {
	ID       int       `db:"id" json:"id"`
	RoomID   string    `db:"room_id" json:"roomId"`
	WinnerID string    `db:"winner_id" json:"winnerId"`
	Reason   string    `db:"reason" json:"reason"`
	EndedAt  time.Time `db:"ended_at" json:"endedAt"`
}

// RecentMatches returns the most recently finished matches, newest first.
func (r *Recorder) RecentMatches(ctx context.Context, limit int) ([]Match, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []Match
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, room_id, winner_id, reason, ended_at
		 FROM match_history ORDER BY ended_at DESC LIMIT $1`, limit)
	return out, err
}
