package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/breakshot/backend/internal/game"
	"github.com/breakshot/backend/internal/models"
	"github.com/breakshot/backend/internal/store"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.storage = New(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}))
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) TestCreateAndGetUser() {
	u := &models.User{ID: "u1", Username: "alice", PasswordHash: "hash"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, u))
	s.False(u.CreatedAt.IsZero())

	got, err := s.storage.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)

	byName, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("u1", byName.ID)
}

func (s *StorageSuite) TestDuplicateUsername() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &models.User{ID: "u1", Username: "alice"}))
	err := s.storage.CreateUser(s.ctx, &models.User{ID: "u2", Username: "alice"})
	s.ErrorIs(err, store.ErrUsernameTaken)
}

func (s *StorageSuite) TestUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nope")
	s.ErrorIs(err, store.ErrUserNotFound)

	_, err = s.storage.GetUserByUsername(s.ctx, "nope")
	s.ErrorIs(err, store.ErrUserNotFound)
}

func (s *StorageSuite) TestRoomLifecycle() {
	room := &models.GameRoom{ID: "r1", Name: "table one", Status: models.RoomWaiting, MaxPlayers: 2}
	s.Require().NoError(s.storage.CreateRoom(s.ctx, room))

	got, err := s.storage.GetRoom(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(models.RoomWaiting, got.Status)

	open, err := s.storage.ListActiveRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(open, 1)

	s.Require().NoError(s.storage.UpdateRoomStatus(s.ctx, "r1", models.RoomActive))
	open, err = s.storage.ListActiveRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(open, 1)
	s.Equal(models.RoomActive, open[0].Status)

	// Finished rooms drop out of the open set.
	s.Require().NoError(s.storage.UpdateRoomStatus(s.ctx, "r1", models.RoomFinished))
	open, err = s.storage.ListActiveRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(open)

	got, err = s.storage.GetRoom(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(models.RoomFinished, got.Status)
}

func (s *StorageSuite) TestRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "nope")
	s.ErrorIs(err, store.ErrRoomNotFound)
	s.ErrorIs(s.storage.UpdateRoomStatus(s.ctx, "nope", models.RoomActive), store.ErrRoomNotFound)
}

func (s *StorageSuite) TestPlayersByRoom() {
	s.Require().NoError(s.storage.AddPlayer(s.ctx, &models.Player{ID: "p1", UserID: "u1", RoomID: "r1"}))
	s.Require().NoError(s.storage.AddPlayer(s.ctx, &models.Player{ID: "p2", UserID: "u2", RoomID: "r1"}))
	s.Require().NoError(s.storage.AddPlayer(s.ctx, &models.Player{ID: "p3", UserID: "u3", RoomID: "r2"}))

	players, err := s.storage.GetPlayersByRoom(s.ctx, "r1")
	s.Require().NoError(err)
	s.Len(players, 2)

	s.Require().NoError(s.storage.RemovePlayer(s.ctx, "p1"))
	players, err = s.storage.GetPlayersByRoom(s.ctx, "r1")
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal("p2", players[0].ID)

	_, err = s.storage.GetPlayer(s.ctx, "p1")
	s.ErrorIs(err, store.ErrPlayerNotFound)
}

func (s *StorageSuite) TestSetCurrentPlayer() {
	s.Require().NoError(s.storage.AddPlayer(s.ctx, &models.Player{ID: "p1", RoomID: "r1", IsCurrentPlayer: true}))
	s.Require().NoError(s.storage.AddPlayer(s.ctx, &models.Player{ID: "p2", RoomID: "r1"}))

	s.Require().NoError(s.storage.SetCurrentPlayer(s.ctx, "r1", "p2"))

	p1, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.False(p1.IsCurrentPlayer)

	p2, err := s.storage.GetPlayer(s.ctx, "p2")
	s.Require().NoError(err)
	s.True(p2.IsCurrentPlayer)

	s.ErrorIs(s.storage.SetCurrentPlayer(s.ctx, "r1", "nope"), store.ErrPlayerNotFound)
}

func (s *StorageSuite) TestUpdateAndMutePlayer() {
	s.Require().NoError(s.storage.AddPlayer(s.ctx, &models.Player{ID: "p1", RoomID: "r1"}))

	p, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	p.BallGroup = models.GroupStripes
	p.BallsLeft = 6
	s.Require().NoError(s.storage.UpdatePlayer(s.ctx, p))

	s.Require().NoError(s.storage.SetPlayerMuted(s.ctx, "p1", true))

	got, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(models.GroupStripes, got.BallGroup)
	s.Equal(6, got.BallsLeft)
	s.True(got.IsMuted)

	s.ErrorIs(s.storage.UpdatePlayer(s.ctx, &models.Player{ID: "nope"}), store.ErrPlayerNotFound)
	s.ErrorIs(s.storage.SetPlayerMuted(s.ctx, "nope", true), store.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGameStateRoundTrip() {
	state, err := s.storage.CreateGameState(s.ctx, "r1", game.InitialLayout())
	s.Require().NoError(err)
	s.Len(state.Balls, game.NumBalls)
	s.Equal(models.PhaseAiming, state.GamePhase)
	s.Equal(store.InitialTurnTime, state.TimeLeft)

	power := 42
	phase := models.PhaseWaiting
	result := "pot"
	cue := models.CuePosition{X: 120, Y: 240, Angle: 0.7}
	s.Require().NoError(s.storage.UpdateGameState(s.ctx, "r1", store.GameStateUpdate{
		CuePosition:    &cue,
		ShotPower:      &power,
		GamePhase:      &phase,
		LastShotResult: &result,
	}))

	got, err := s.storage.GetGameState(s.ctx, "r1")
	s.Require().NoError(err)
	s.Require().NotNil(got.CuePosition)
	s.Equal(120.0, got.CuePosition.X)
	s.Equal(42, got.ShotPower)
	s.Equal(models.PhaseWaiting, got.GamePhase)
	s.Equal("pot", got.LastShotResult)
	// Fields the update did not name keep their values.
	s.Len(got.Balls, game.NumBalls)
	s.Equal(store.InitialTurnTime, got.TimeLeft)

	s.Require().NoError(s.storage.UpdateGameState(s.ctx, "r1", store.GameStateUpdate{ClearCue: true}))
	got, err = s.storage.GetGameState(s.ctx, "r1")
	s.Require().NoError(err)
	s.Nil(got.CuePosition)
}

func (s *StorageSuite) TestGameStateNotFound() {
	_, err := s.storage.GetGameState(s.ctx, "nope")
	s.ErrorIs(err, store.ErrStateNotFound)
	s.ErrorIs(s.storage.UpdateGameState(s.ctx, "nope", store.GameStateUpdate{}), store.ErrStateNotFound)
}
