package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/breakshot/backend/internal/game"
	"github.com/breakshot/backend/internal/models"
	"github.com/breakshot/backend/internal/store"
)

// Storage is a Redis-backed implementation of store.Store. Entities are
// stored as JSON values under prefixed keys, with SET indexes for the
// lookups that cross entities (room membership, open rooms).
type Storage struct {
	client *redis.Client
}

var _ store.Store = (*Storage)(nil)

// New wraps an existing Redis client.
func New(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// Close closes the underlying Redis connection.
func (s *Storage) Close() error {
	return s.client.Close()
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	// SetNX on the username index doubles as the uniqueness check.
	ok, err := s.client.SetNX(ctx, usernameIndexKey(user.Username), user.ID, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrUsernameTaken
	}

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userKey(user.ID), data, 0).Err()
}

func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.getJSON(ctx, userKey(id), &user, store.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// Room operations

func (s *Storage) CreateRoom(ctx context.Context, room *models.GameRoom) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}

	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.ID), data, 0)
	if room.Status != models.RoomFinished {
		pipe.SAdd(ctx, openRoomsKey(), room.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id string) (*models.GameRoom, error) {
	var room models.GameRoom
	if err := s.getJSON(ctx, roomKey(id), &room, store.ErrRoomNotFound); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) UpdateRoomStatus(ctx context.Context, id string, status models.RoomStatus) error {
	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	room.Status = status

	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(id), data, 0)
	if status == models.RoomFinished {
		pipe.SRem(ctx, openRoomsKey(), id)
	} else {
		pipe.SAdd(ctx, openRoomsKey(), id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListActiveRooms(ctx context.Context) ([]models.GameRoom, error) {
	ids, err := s.client.SMembers(ctx, openRoomsKey()).Result()
	if err != nil {
		return nil, err
	}

	var out []models.GameRoom
	for _, id := range ids {
		room, err := s.GetRoom(ctx, id)
		if errors.Is(err, store.ErrRoomNotFound) {
			// Stale index entry.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, nil
}

// Player operations

func (s *Storage) AddPlayer(ctx context.Context, player *models.Player) error {
	if player.JoinedAt.IsZero() {
		player.JoinedAt = time.Now()
	}

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.ID), data, 0)
	pipe.SAdd(ctx, roomPlayersKey(player.RoomID), player.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	var player models.Player
	if err := s.getJSON(ctx, playerKey(id), &player, store.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) RemovePlayer(ctx context.Context, id string) error {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.SRem(ctx, roomPlayersKey(player.RoomID), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayersByRoom(ctx context.Context, roomID string) ([]models.Player, error) {
	ids, err := s.client.SMembers(ctx, roomPlayersKey(roomID)).Result()
	if err != nil {
		return nil, err
	}

	var out []models.Player
	for _, id := range ids {
		player, err := s.GetPlayer(ctx, id)
		if errors.Is(err, store.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *player)
	}
	return out, nil
}

func (s *Storage) SetCurrentPlayer(ctx context.Context, roomID, playerID string) error {
	players, err := s.GetPlayersByRoom(ctx, roomID)
	if err != nil {
		return err
	}

	found := false
	pipe := s.client.Pipeline()
	for i := range players {
		p := players[i]
		p.IsCurrentPlayer = p.ID == playerID
		if p.IsCurrentPlayer {
			found = true
		}
		data, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		pipe.Set(ctx, playerKey(p.ID), data, 0)
	}
	if !found {
		return store.ErrPlayerNotFound
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) UpdatePlayer(ctx context.Context, player *models.Player) error {
	exists, err := s.client.Exists(ctx, playerKey(player.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return store.ErrPlayerNotFound
	}

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(player.ID), data, 0).Err()
}

func (s *Storage) SetPlayerMuted(ctx context.Context, playerID string, muted bool) error {
	player, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	player.IsMuted = muted
	return s.UpdatePlayer(ctx, player)
}

// Game state operations

func (s *Storage) CreateGameState(ctx context.Context, roomID string, balls []game.Ball) (*models.GameState, error) {
	state := models.GameState{
		RoomID:    roomID,
		Balls:     append([]game.Ball(nil), balls...),
		TimeLeft:  store.InitialTurnTime,
		GamePhase: models.PhaseAiming,
	}

	data, err := json.Marshal(&state)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, stateKey(roomID), data, 0).Err(); err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

func (s *Storage) GetGameState(ctx context.Context, roomID string) (*models.GameState, error) {
	var state models.GameState
	if err := s.getJSON(ctx, stateKey(roomID), &state, store.ErrStateNotFound); err != nil {
		return nil, err
	}
	return &state, nil
}

// UpdateGameState reads, merges and writes back. Concurrent writers for the
// same room must be serialized by the caller; the coordinator holds a
// per-room lock around every state write.
func (s *Storage) UpdateGameState(ctx context.Context, roomID string, upd store.GameStateUpdate) error {
	state, err := s.GetGameState(ctx, roomID)
	if err != nil {
		return err
	}
	store.ApplyUpdate(state, upd)

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, stateKey(roomID), data, 0).Err()
}

// getJSON loads a JSON value, mapping redis.Nil to notFound.
func (s *Storage) getJSON(ctx context.Context, key string, dst any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, dst)
}
