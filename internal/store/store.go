package store

import (
	"context"
	"errors"

	"github.com/breakshot/backend/internal/game"
	"github.com/breakshot/backend/internal/models"
)

// Lookup failures are sentinel errors so callers can map them to transport
// responses with errors.Is.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrStateNotFound  = errors.New("game state not found")
	ErrUsernameTaken  = errors.New("username already taken")
)

// GameStateUpdate is a partial update: nil fields leave the stored value
// unchanged. ClearCue resets the aim preview, since a nil CuePosition alone
// cannot distinguish "leave it" from "remove it".
type GameStateUpdate struct {
	Balls          []game.Ball
	CuePosition    *models.CuePosition
	ClearCue       bool
	ShotPower      *int
	TimeLeft       *int
	GamePhase      *models.GamePhase
	LastShotResult *string
}

// Store is the single source of truth for rooms, players, users and live
// game state. Every read returns a copy the caller may inspect but must not
// treat as shared; every write goes through an explicit operation. The
// engine depends only on this interface, never on a concrete backend.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateRoom(ctx context.Context, room *models.GameRoom) error
	GetRoom(ctx context.Context, id string) (*models.GameRoom, error)
	UpdateRoomStatus(ctx context.Context, id string, status models.RoomStatus) error
	ListActiveRooms(ctx context.Context) ([]models.GameRoom, error)

	AddPlayer(ctx context.Context, player *models.Player) error
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	RemovePlayer(ctx context.Context, id string) error
	GetPlayersByRoom(ctx context.Context, roomID string) ([]models.Player, error)
	// SetCurrentPlayer marks playerID as the acting player and clears the
	// flag on every other player in the room.
	SetCurrentPlayer(ctx context.Context, roomID, playerID string) error
	UpdatePlayer(ctx context.Context, player *models.Player) error
	SetPlayerMuted(ctx context.Context, playerID string, muted bool) error

	CreateGameState(ctx context.Context, roomID string, balls []game.Ball) (*models.GameState, error)
	GetGameState(ctx context.Context, roomID string) (*models.GameState, error)
	UpdateGameState(ctx context.Context, roomID string, upd GameStateUpdate) error
}

// InitialTurnTime is the turn clock value a fresh game state starts with,
// in seconds. The coordinator resets the clock to its configured value on
// every turn change; this only covers states read before the first shot.
const InitialTurnTime = 150

// ApplyUpdate merges a partial update into a state. Shared by every backend
// so they agree on the partial-update semantics.
func ApplyUpdate(s *models.GameState, upd GameStateUpdate) {
	if upd.Balls != nil {
		s.Balls = append([]game.Ball(nil), upd.Balls...)
	}
	if upd.ClearCue {
		s.CuePosition = nil
	} else if upd.CuePosition != nil {
		cue := *upd.CuePosition
		s.CuePosition = &cue
	}
	if upd.ShotPower != nil {
		s.ShotPower = *upd.ShotPower
	}
	if upd.TimeLeft != nil {
		s.TimeLeft = *upd.TimeLeft
	}
	if upd.GamePhase != nil {
		s.GamePhase = *upd.GamePhase
	}
	if upd.LastShotResult != nil {
		s.LastShotResult = *upd.LastShotResult
	}
}
