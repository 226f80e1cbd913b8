package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breakshot/backend/internal/game"
	"github.com/breakshot/backend/internal/models"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	u := &models.User{ID: "u1", Username: "alice", PasswordHash: "hash"}
	require.NoError(t, m.CreateUser(ctx, u))

	got, err := m.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.False(t, got.CreatedAt.IsZero())

	byName, err := m.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	err = m.CreateUser(ctx, &models.User{ID: "u2", Username: "alice"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = m.GetUser(ctx, "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryRooms(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.CreateRoom(ctx, &models.GameRoom{ID: "r1", Name: "table one", Status: models.RoomWaiting, MaxPlayers: 2}))
	require.NoError(t, m.CreateRoom(ctx, &models.GameRoom{ID: "r2", Name: "table two", Status: models.RoomFinished, MaxPlayers: 2}))

	got, err := m.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.RoomWaiting, got.Status)

	require.NoError(t, m.UpdateRoomStatus(ctx, "r1", models.RoomActive))
	got, err = m.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.RoomActive, got.Status)

	active, err := m.ListActiveRooms(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "r1", active[0].ID)

	_, err = m.GetRoom(ctx, "nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.ErrorIs(t, m.UpdateRoomStatus(ctx, "nope", models.RoomActive), ErrRoomNotFound)
}

func TestMemoryPlayers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.AddPlayer(ctx, &models.Player{ID: "p1", UserID: "u1", RoomID: "r1"}))
	require.NoError(t, m.AddPlayer(ctx, &models.Player{ID: "p2", UserID: "u2", RoomID: "r1"}))
	require.NoError(t, m.AddPlayer(ctx, &models.Player{ID: "p3", UserID: "u3", RoomID: "r2"}))

	players, err := m.GetPlayersByRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, players, 2)

	require.NoError(t, m.SetCurrentPlayer(ctx, "r1", "p1"))
	require.NoError(t, m.SetCurrentPlayer(ctx, "r1", "p2"))

	p1, err := m.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, p1.IsCurrentPlayer)
	p2, err := m.GetPlayer(ctx, "p2")
	require.NoError(t, err)
	assert.True(t, p2.IsCurrentPlayer)

	assert.ErrorIs(t, m.SetCurrentPlayer(ctx, "r1", "p3"), ErrPlayerNotFound)

	// A rejected switch leaves the previous turn holder in place.
	p2, err = m.GetPlayer(ctx, "p2")
	require.NoError(t, err)
	assert.True(t, p2.IsCurrentPlayer)

	p1.BallGroup = models.GroupSolids
	p1.BallsLeft = 7
	require.NoError(t, m.UpdatePlayer(ctx, p1))
	p1, err = m.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.GroupSolids, p1.BallGroup)
	assert.Equal(t, 7, p1.BallsLeft)

	require.NoError(t, m.SetPlayerMuted(ctx, "p1", true))
	p1, err = m.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p1.IsMuted)

	require.NoError(t, m.RemovePlayer(ctx, "p1"))
	_, err = m.GetPlayer(ctx, "p1")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	assert.ErrorIs(t, m.RemovePlayer(ctx, "p1"), ErrPlayerNotFound)
}

func TestMemoryGameState(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	state, err := m.CreateGameState(ctx, "r1", game.InitialLayout())
	require.NoError(t, err)
	assert.Len(t, state.Balls, game.NumBalls)
	assert.Equal(t, models.PhaseAiming, state.GamePhase)
	assert.Equal(t, InitialTurnTime, state.TimeLeft)

	// A returned copy must not alias the stored state.
	state.Balls[0].X = -999
	fresh, err := m.GetGameState(ctx, "r1")
	require.NoError(t, err)
	assert.NotEqual(t, -999.0, fresh.Balls[0].X)

	power := 60
	timeLeft := 30
	phase := models.PhaseWaiting
	result := "foul"
	cue := models.CuePosition{X: 100, Y: 200, Angle: 1.5}
	require.NoError(t, m.UpdateGameState(ctx, "r1", GameStateUpdate{
		CuePosition:    &cue,
		ShotPower:      &power,
		TimeLeft:       &timeLeft,
		GamePhase:      &phase,
		LastShotResult: &result,
	}))

	got, err := m.GetGameState(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got.CuePosition)
	assert.Equal(t, 100.0, got.CuePosition.X)
	assert.Equal(t, 60, got.ShotPower)
	assert.Equal(t, 30, got.TimeLeft)
	assert.Equal(t, models.PhaseWaiting, got.GamePhase)
	assert.Equal(t, "foul", got.LastShotResult)

	require.NoError(t, m.UpdateGameState(ctx, "r1", GameStateUpdate{ClearCue: true}))
	got, err = m.GetGameState(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, got.CuePosition)
	// Untouched fields survive a partial update.
	assert.Equal(t, 60, got.ShotPower)

	_, err = m.GetGameState(ctx, "missing")
	assert.ErrorIs(t, err, ErrStateNotFound)
	assert.ErrorIs(t, m.UpdateGameState(ctx, "missing", GameStateUpdate{}), ErrStateNotFound)
}
