package models

import (
	"time"

	"github.com/breakshot/backend/internal/game"
)

// RoomStatus is the lifecycle state of a game room. Transitions are one-way:
// waiting -> active -> finished.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomActive   RoomStatus = "active"
	RoomFinished RoomStatus = "finished"
)

// GamePhase is the per-turn state of an in-progress game.
type GamePhase string

const (
	PhaseAiming   GamePhase = "aiming"
	PhaseShooting GamePhase = "shooting"
	PhaseWaiting  GamePhase = "waiting"
)

// BallGroup is a player's assigned ball group. Assignment is a stored fact,
// never derived from the table layout.
type BallGroup string

const (
	GroupUnassigned BallGroup = ""
	GroupSolids     BallGroup = "solids"
	GroupStripes    BallGroup = "stripes"
)

// User is a registered account.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// GameRoom is a two-player match container.
type GameRoom struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Status     RoomStatus `db:"status" json:"status"`
	MaxPlayers int        `db:"max_players" json:"maxPlayers"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// Player is a user's seat in a room.
type Player struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"userId"`
	RoomID          string    `db:"room_id" json:"roomId"`
	BallGroup       BallGroup `db:"ball_group" json:"ballType"`
	BallsLeft       int       `db:"balls_left" json:"ballsLeft"`
	IsCurrentPlayer bool      `db:"is_current_player" json:"isCurrentPlayer"`
	IsMuted         bool      `db:"is_muted" json:"isMuted"`
	JoinedAt        time.Time `db:"joined_at" json:"joinedAt"`
}

// CuePosition is the live aim preview of the cue stick.
type CuePosition struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// GameState is the authoritative live state of a room, 1:1 with its GameRoom.
// It is owned by the store: reads return copies, writes go through the
// store's update entry point.
type GameState struct {
	RoomID         string       `json:"roomId"`
	Balls          []game.Ball  `json:"balls"`
	CuePosition    *CuePosition `json:"cuePosition,omitempty"`
	ShotPower      int          `json:"shotPower"`
	TimeLeft       int          `json:"timeLeft"` // seconds, advisory only
	GamePhase      GamePhase    `json:"gamePhase"`
	LastShotResult string       `json:"lastShotResult,omitempty"` // pot, miss, foul
}

// Clone returns a deep copy the caller may freely mutate.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Balls = make([]game.Ball, len(s.Balls))
	copy(out.Balls, s.Balls)
	if s.CuePosition != nil {
		cue := *s.CuePosition
		out.CuePosition = &cue
	}
	return &out
}
