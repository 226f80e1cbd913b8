package store

import (
	"context"
	"sync"
	"time"

	"github.com/breakshot/backend/internal/game"
	"github.com/breakshot/backend/internal/models"
)

// Memory is an in-process Store used in development and tests. All methods
// copy on the way in and out so callers never share mutable state with the
// store.
type Memory struct {
	mu        sync.RWMutex
	users     map[string]models.User
	rooms     map[string]models.GameRoom
	players   map[string]models.Player
	states    map[string]models.GameState // keyed by room id
	usernames map[string]string           // username -> user id
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]models.User),
		rooms:     make(map[string]models.GameRoom),
		players:   make(map[string]models.Player),
		states:    make(map[string]models.GameState),
		usernames: make(map[string]string),
	}
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.usernames[user.Username]; taken {
		return ErrUsernameTaken
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.ID] = *user
	m.usernames[user.Username] = user.ID
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usernames[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *Memory) CreateRoom(_ context.Context, room *models.GameRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	m.rooms[room.ID] = *room
	return nil
}

func (m *Memory) GetRoom(_ context.Context, id string) (*models.GameRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &r, nil
}

func (m *Memory) UpdateRoomStatus(_ context.Context, id string, status models.RoomStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	r.Status = status
	m.rooms[id] = r
	return nil
}

func (m *Memory) ListActiveRooms(_ context.Context) ([]models.GameRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.GameRoom
	for _, r := range m.rooms {
		if r.Status == models.RoomActive || r.Status == models.RoomWaiting {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) AddPlayer(_ context.Context, player *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if player.JoinedAt.IsZero() {
		player.JoinedAt = time.Now()
	}
	m.players[player.ID] = *player
	return nil
}

func (m *Memory) GetPlayer(_ context.Context, id string) (*models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return &p, nil
}

func (m *Memory) RemovePlayer(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[id]; !ok {
		return ErrPlayerNotFound
	}
	delete(m.players, id)
	return nil
}

func (m *Memory) GetPlayersByRoom(_ context.Context, roomID string) ([]models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Player
	for _, p := range m.players {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) SetCurrentPlayer(_ context.Context, roomID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.players[playerID]
	if !ok || target.RoomID != roomID {
		return ErrPlayerNotFound
	}
	for id, p := range m.players {
		if p.RoomID != roomID {
			continue
		}
		p.IsCurrentPlayer = id == playerID
		m.players[id] = p
	}
	return nil
}

func (m *Memory) UpdatePlayer(_ context.Context, player *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[player.ID]; !ok {
		return ErrPlayerNotFound
	}
	m.players[player.ID] = *player
	return nil
}

func (m *Memory) SetPlayerMuted(_ context.Context, playerID string, muted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.IsMuted = muted
	m.players[playerID] = p
	return nil
}

func (m *Memory) CreateGameState(_ context.Context, roomID string, balls []game.Ball) (*models.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := models.GameState{
		RoomID:    roomID,
		Balls:     append([]game.Ball(nil), balls...),
		TimeLeft:  InitialTurnTime,
		GamePhase: models.PhaseAiming,
	}
	m.states[roomID] = state
	return state.Clone(), nil
}

func (m *Memory) GetGameState(_ context.Context, roomID string) (*models.GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[roomID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return s.Clone(), nil
}

func (m *Memory) UpdateGameState(_ context.Context, roomID string, upd GameStateUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[roomID]
	if !ok {
		return ErrStateNotFound
	}
	ApplyUpdate(&s, upd)
	m.states[roomID] = s
	return nil
}
